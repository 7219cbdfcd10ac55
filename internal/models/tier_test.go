package models

import "testing"

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Plan
		wantErr bool
	}{
		{"Pro", "pro", PlanPro, false},
		{"Empty", "", PlanPro, false},
		{"Max5", "max5", PlanMax5, false},
		{"Max20", "max20", PlanMax20, false},
		{"Auto", "auto", PlanAuto, false},
		{"CustomMaxAlias", "custom_max", PlanAuto, false},
		{"Unknown", "enterprise", PlanPro, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlan(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePlan(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePlan(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlan_Ceiling(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want int
	}{
		{"Pro", PlanPro, 7000},
		{"Max5", PlanMax5, 35000},
		{"Max20", PlanMax20, 140000},
		{"Auto", PlanAuto, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.Ceiling(); got != tt.want {
				t.Errorf("Ceiling() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearestNamedPlan(t *testing.T) {
	tests := []struct {
		name    string
		ceiling int
		want    Plan
	}{
		{"Zero", 0, PlanPro},
		{"UnderPro", 6500, PlanPro},
		{"JustOverPro", 7200, PlanMax5},
		{"UnderMax5", 35000, PlanMax5},
		{"OverMax5", 36000, PlanMax20},
		{"Huge", 200000, PlanMax20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearestNamedPlan(tt.ceiling); got != tt.want {
				t.Errorf("NearestNamedPlan(%d) = %v, want %v", tt.ceiling, got, tt.want)
			}
		})
	}
}

func TestQuotaTier_Name(t *testing.T) {
	tests := []struct {
		name string
		tier QuotaTier
		want string
	}{
		{"StaticPro", QuotaTier{Plan: PlanPro, Ceiling: 7000}, "pro"},
		{"StaticMax20", QuotaTier{Plan: PlanMax20, Ceiling: 140000}, "max20"},
		{"AutoDetected", QuotaTier{Plan: PlanAuto, Ceiling: 7200, AutoDetected: true}, "auto (~max5)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.Name(); got != tt.want {
				t.Errorf("Name() = %v, want %v", got, tt.want)
			}
		})
	}
}
