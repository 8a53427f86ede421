package hash

import "testing"

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid password", password: "s3cret-pass", wantErr: false},
		{name: "minimum length", password: "exactly8", wantErr: false},
		{name: "too short", password: "short", wantErr: true},
		{name: "empty", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := Password(tt.password)

			if tt.wantErr {
				if err == nil {
					t.Error("Password() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("Password() error = %v", err)
			}
			if hashed == tt.password {
				t.Error("Password() returned the plaintext")
			}
			if err := Compare(hashed, tt.password); err != nil {
				t.Errorf("Compare() rejected matching password: %v", err)
			}
			if err := Compare(hashed, "wrong-password"); err == nil {
				t.Error("Compare() accepted wrong password")
			}
		})
	}
}

func TestPIN(t *testing.T) {
	hashed, err := PIN("4321")
	if err != nil {
		t.Fatalf("PIN() error = %v", err)
	}
	if hashed == "4321" {
		t.Error("PIN() returned the plaintext")
	}
	if err := Compare(hashed, "4321"); err != nil {
		t.Errorf("Compare() rejected matching pin: %v", err)
	}
	if err := Compare(hashed, "0000"); err == nil {
		t.Error("Compare() accepted wrong pin")
	}

	for _, bad := range []string{"", "123", "12345"} {
		if _, err := PIN(bad); err == nil {
			t.Errorf("PIN(%q) expected error", bad)
		}
	}
}

func TestToken(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}

	h1 := Token(string(long))
	h2 := Token(string(long))
	if h1 != h2 {
		t.Error("Token() is not deterministic")
	}
	if h1 == Token("other") {
		t.Error("Token() collided on different inputs")
	}
	if len(h1) != 64 {
		t.Errorf("Token() hex length = %d, want 64", len(h1))
	}
}
