package session

import "testing"

func TestStaffFrom(t *testing.T) {
	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"nil session", nil, false},
		{"empty map", Map{}, false},
		{"nil value", Map{StaffKey: nil}, false},
		{"typed nil pointer", Map{StaffKey: (*Staff)(nil)}, false},
		{"staff pointer", Map{StaffKey: &Staff{ID: 42}}, true},
		{"staff value", Map{StaffKey: Staff{ID: 42}}, true},
		{"plain string", Map{StaffKey: "42"}, true},
		{"other key only", Map{"OTHER": &Staff{ID: 1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StaffFrom(tt.s) != nil
			if got != tt.want {
				t.Errorf("StaffFrom() present = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapAttribute(t *testing.T) {
	m := Map{"a": 1}
	if v, ok := m.Attribute("a"); !ok || v != 1 {
		t.Errorf("Attribute(a) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := m.Attribute("b"); ok {
		t.Error("Attribute(b) should be missing")
	}
}
