package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestRegister_TwiceConflicts(t *testing.T) {
	f := newGameFixture()

	w := doJSON(t, f.server, http.MethodPost, "/register", `{"name":"  alice  "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("first register: got %d, body %s", w.Code, w.Body.String())
	}
	var resp RegisterResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name != "alice" || resp.Message != "Player registered successfully" {
		t.Errorf("response: got %+v", resp)
	}
	if _, ok := f.players.players["alice"]; !ok {
		t.Error("player not stored under trimmed name")
	}

	w = doJSON(t, f.server, http.MethodPost, "/register", `{"name":"alice"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("second register: got %d, want %d", w.Code, http.StatusConflict)
	}
	if msg := decodeError(t, w); msg != "Name is already taken" {
		t.Errorf("error: got %q", msg)
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newGameFixture()

	tests := []struct {
		name string
		body string
	}{
		{"missing", `{}`},
		{"blank", `{"name":"   "}`},
		{"not a string", `{"name":42}`},
		{"malformed", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, f.server, http.MethodPost, "/register", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d, body %s", w.Code, http.StatusBadRequest, w.Body.String())
			}
			if decodeError(t, w) == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestRegister_ExtraFieldsAccepted(t *testing.T) {
	f := newGameFixture()

	w := doJSON(t, f.server, http.MethodPost, "/register", `{"name":"bob","avatar":"cat"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, body %s", w.Code, w.Body.String())
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	f := newGameFixture()
	f.players.err = errors.New("redis down")

	w := doJSON(t, f.server, http.MethodPost, "/register", `{"name":"carol"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "internal server error" {
		t.Errorf("error: got %q", msg)
	}
}

func TestVerifyAdmin(t *testing.T) {
	f := newGameFixture()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"match", `{"password":"hunter2"}`, http.StatusOK},
		{"mismatch", `{"password":"hunter3"}`, http.StatusUnauthorized},
		{"missing", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, f.server, http.MethodPost, "/verify-admin", tt.body)
			if w.Code != tt.want {
				t.Errorf("status: got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestUpdateAdmin_PersistsForVerify(t *testing.T) {
	f := newGameFixture()

	w := doJSON(t, f.server, http.MethodPut, "/update-admin", `{"password":"n3w","currentPassword":"hunter2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: got %d, body %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, f.server, http.MethodPost, "/verify-admin", `{"password":"n3w"}`); w.Code != http.StatusOK {
		t.Errorf("verify new password: got %d", w.Code)
	}
	if w := doJSON(t, f.server, http.MethodPost, "/verify-admin", `{"password":"hunter2"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("verify old password: got %d", w.Code)
	}
}

func TestUpdateAdmin_Rejections(t *testing.T) {
	f := newGameFixture()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing new password", `{"currentPassword":"hunter2"}`, http.StatusBadRequest},
		{"wrong current password", `{"password":"n3w","currentPassword":"nope"}`, http.StatusUnauthorized},
		{"missing current password", `{"password":"n3w"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, f.server, http.MethodPut, "/update-admin", tt.body)
			if w.Code != tt.want {
				t.Errorf("status: got %d, want %d", w.Code, tt.want)
			}
		})
	}
	if f.admin.password != "hunter2" {
		t.Errorf("password changed to %q", f.admin.password)
	}
}
