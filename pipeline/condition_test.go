package pipeline

import "testing"

func TestParseCondition(t *testing.T) {
	tests := []struct {
		expr    string
		params  map[string]string
		want    bool
		wantErr bool
	}{
		{expr: `platform == "linux"`, params: map[string]string{"platform": "linux"}, want: true},
		{expr: `platform == "linux"`, params: map[string]string{"platform": "darwin"}, want: false},
		{expr: `platform != "windows"`, params: map[string]string{"platform": "linux"}, want: true},
		{expr: `refresh_enabled`, params: map[string]string{"refresh_enabled": "true"}, want: true},
		{expr: `refresh_enabled`, params: map[string]string{"refresh_enabled": "false"}, want: false},
		{expr: `refresh_enabled`, params: map[string]string{}, want: false},
		{expr: `!dry_run`, params: map[string]string{"dry_run": "0"}, want: true},
		{expr: `!dry_run`, params: map[string]string{"dry_run": "yes"}, want: false},
		{expr: `env == 'prod'`, params: map[string]string{"env": "prod"}, want: true},
		{expr: `env == prod`, params: map[string]string{"env": "prod"}, want: true},
		{expr: `!env == "prod"`, wantErr: true},
		{expr: `two words`, wantErr: true},
		{expr: ` == "x"`, wantErr: true},
	}

	for _, tt := range tests {
		cond, err := ParseCondition(tt.expr)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCondition(%q): expected error", tt.expr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCondition(%q): unexpected error: %v", tt.expr, err)
			continue
		}
		if got := cond.Eval(tt.params); got != tt.want {
			t.Errorf("Eval(%q, %v) = %v, want %v", tt.expr, tt.params, got, tt.want)
		}
	}
}

func TestParseCondition_Empty(t *testing.T) {
	cond, err := ParseCondition("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cond != nil {
		t.Fatal("expected nil condition for empty expression")
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"", "0", "false", "FALSE", "no", "off"} {
		if IsTruthy(v) {
			t.Errorf("IsTruthy(%q) should be false", v)
		}
	}
	for _, v := range []string{"1", "true", "yes", "anything"} {
		if !IsTruthy(v) {
			t.Errorf("IsTruthy(%q) should be true", v)
		}
	}
}
