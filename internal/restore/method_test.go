package restore

import "testing"

func TestParseMethod(t *testing.T) {
	tests := []struct {
		tag     string
		want    Method
		wantErr bool
	}{
		{tag: "ai1", want: MethodAI1},
		{tag: "dup", want: MethodDuplicator},
		{tag: "wpcontent", want: MethodWPContent},
		{tag: "wp", want: MethodWP},
		{tag: "", wantErr: true},
		{tag: "rsync", wantErr: true},
		{tag: "AI1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseMethod(tt.tag)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.tag, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseMethod(%q) = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestMethodString(t *testing.T) {
	for _, m := range []Method{MethodAI1, MethodDuplicator, MethodWPContent, MethodWP} {
		round, err := ParseMethod(m.String())
		if err != nil {
			t.Fatalf("ParseMethod(%q): %v", m.String(), err)
		}
		if round != m {
			t.Errorf("round trip %v != %v", round, m)
		}
	}
}

func TestNeedsDatabaseDump(t *testing.T) {
	if !MethodWPContent.NeedsDatabaseDump() {
		t.Error("wpcontent must require a dump path")
	}
	for _, m := range []Method{MethodAI1, MethodDuplicator, MethodWP} {
		if m.NeedsDatabaseDump() {
			t.Errorf("%v must not require a dump path", m)
		}
	}
}
