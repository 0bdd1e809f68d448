package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	t.Setenv("JOBNADO_TEST_SECRET", " from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{
			name: "file takes precedence",
			src:  Source{Name: "gemini api key", File: keyFile, Env: "JOBNADO_TEST_SECRET", Value: "inline"},
			want: "from-file",
		},
		{
			name: "env before inline value",
			src:  Source{Env: "JOBNADO_TEST_SECRET", Value: "inline"},
			want: "from-env",
		},
		{
			name: "inline value when env is unset",
			src:  Source{Env: "JOBNADO_TEST_MISSING", Value: " inline "},
			want: "inline",
		},
		{
			name:    "empty file",
			src:     Source{Name: "resend api key", File: emptyFile},
			wantErr: "is empty",
		},
		{
			name:    "missing file",
			src:     Source{File: filepath.Join(dir, "nope")},
			wantErr: "reading secret",
		},
		{
			name:    "nothing configured",
			src:     Source{Name: "resend api key", Env: "JOBNADO_TEST_MISSING"},
			wantErr: "resend api key is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
