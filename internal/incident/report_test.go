package incident

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

var scenarioDescriptions = []string{
	"Two cars collided, one occupant trapped, smoke rising from engine bay.",
	"Fire visible near front vehicle, fuel leak suspected.",
	"Road is clear and dry, moderate traffic.",
	"No additional hazards visible.",
}

func keywordSet(keywords ...string) KeywordSet {
	ks := make(KeywordSet)
	for _, k := range keywords {
		ks[k] = struct{}{}
	}
	return ks
}

func TestExtractKeywords_Scenario(t *testing.T) {
	got := ExtractKeywords(scenarioDescriptions)
	want := keywordSet(KeywordVehicleCollision, KeywordTrappedOccupants, KeywordSmoke, KeywordFireHazard, KeywordFuelLeak)

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords() = %v, want %v", got.Sorted(), want.Sorted())
	}
}

func TestExtractKeywords_Triggers(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"FLAMES everywhere", []string{KeywordFireHazard}},
		{"a small fire", []string{KeywordFireHazard}},
		{"thick smoke", []string{KeywordSmoke}},
		{"driver is Trapped", []string{KeywordTrappedOccupants}},
		{"minor injury", []string{KeywordInjuries}},
		{"two injured", []string{KeywordInjuries}},
		{"rear-end collision", []string{KeywordVehicleCollision}},
		{"a crash", []string{KeywordVehicleCollision}},
		{"two cars collided", []string{KeywordVehicleCollision}},
		{"fuel on road", []string{KeywordFuelLeak}},
		{"oil leak", []string{KeywordFuelLeak}},
		{"calm street, parked cars", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ExtractKeywords([]string{tt.text}).Sorted()
			want := keywordSet(tt.want...).Sorted()
			if !reflect.DeepEqual(got, want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.text, got, want)
			}
		})
	}
}

func TestExtractKeywords_Monotonic(t *testing.T) {
	base := ExtractKeywords([]string{"smoke near the crash"})
	more := ExtractKeywords([]string{"smoke near the crash", "driver trapped, fuel leak"})

	for kw := range base {
		if !more.Has(kw) {
			t.Errorf("adding text removed keyword %q", kw)
		}
	}
	if len(more) <= len(base) {
		t.Errorf("expected additional keywords, base=%v more=%v", base.Sorted(), more.Sorted())
	}
}

func TestExtractKeywords_Empty(t *testing.T) {
	if got := ExtractKeywords(nil); len(got) != 0 {
		t.Errorf("expected empty set, got %v", got.Sorted())
	}
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name     string
		keywords KeywordSet
		want     Severity
	}{
		{"fire", keywordSet(KeywordFireHazard), SeverityHigh},
		{"trapped", keywordSet(KeywordTrappedOccupants), SeverityHigh},
		{"both", keywordSet(KeywordFireHazard, KeywordTrappedOccupants, KeywordSmoke), SeverityHigh},
		{"smoke only", keywordSet(KeywordSmoke), SeverityModerate},
		{"collision and injuries", keywordSet(KeywordVehicleCollision, KeywordInjuries), SeverityModerate},
		{"none", keywordSet(), SeverityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySeverity(tt.keywords); got != tt.want {
				t.Errorf("ClassifySeverity() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecommendServices(t *testing.T) {
	tests := []struct {
		name     string
		keywords KeywordSet
		want     []string
	}{
		{"smoke alone triggers fire department", keywordSet(KeywordSmoke), []string{ServiceFireDepartment}},
		{"fire and smoke once", keywordSet(KeywordFireHazard, KeywordSmoke), []string{ServiceFireDepartment}},
		{"injuries and trapped once", keywordSet(KeywordInjuries, KeywordTrappedOccupants), []string{ServiceEMS}},
		{"fixed order", keywordSet(KeywordFuelLeak, KeywordVehicleCollision, KeywordInjuries, KeywordFireHazard),
			[]string{ServiceFireDepartment, ServiceEMS, ServicePolice, ServiceHazmat}},
		{"none", keywordSet(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecommendServices(tt.keywords); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RecommendServices() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReportGenerator_Scenario(t *testing.T) {
	g := ReportGenerator{Now: func() time.Time {
		return time.Date(2026, 3, 14, 9, 5, 7, 0, time.UTC)
	}}
	keywords := ExtractKeywords(scenarioDescriptions)

	report := g.Generate(scenarioDescriptions, keywords)

	for _, want := range []string{
		"SEVERITY: HIGH",
		"Time of Report: 09:05:07",
		"- Fire Hazard\n",
		"- Vehicle Collision\n",
		"Frame 1: Two cars collided, one occupant trapped, smoke rising from engine bay.\n",
		"Frame 4: No additional hazards visible.\n",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}

	for _, service := range []string{ServiceFireDepartment, ServiceEMS, ServicePolice, ServiceHazmat} {
		if n := strings.Count(report, "- "+service+"\n"); n != 1 {
			t.Errorf("service %q appears %d times, want 1", service, n)
		}
	}

	fire := strings.Index(report, ServiceFireDepartment)
	hazmat := strings.Index(report, ServiceHazmat)
	if fire > hazmat {
		t.Error("services are not in fixed order")
	}
}

func TestReportGenerator_Moderate(t *testing.T) {
	g := ReportGenerator{Now: func() time.Time { return time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC) }}

	report := g.Generate([]string{"Clear road."}, keywordSet())

	if !strings.Contains(report, "SEVERITY: MODERATE") {
		t.Errorf("expected MODERATE severity\n%s", report)
	}
	if strings.Contains(report, ServicePolice) {
		t.Errorf("no services expected\n%s", report)
	}
}
