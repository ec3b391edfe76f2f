package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"plc_alarm_monitor/internal/service"
)

func TestAuthHandlers_SignUpSignIn(t *testing.T) {
	auth := &mockAuth{signUpID: 42, genTokenToken: "jwt-token"}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s)

	// sign-up happy path
	w := doRequest(r, http.MethodPost, "/auth/sign-up", []byte(`{"username":"operator","password":"secret"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d, body=%s", w.Code, w.Body.String())
	}
	var idResp struct {
		ID int `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &idResp)
	if idResp.ID != 42 {
		t.Fatalf("id: %d", idResp.ID)
	}
	if auth.lastSignUpUsername != "operator" || auth.lastSignUpPassword != "secret" {
		t.Fatalf("credentials not forwarded: %q/%q", auth.lastSignUpUsername, auth.lastSignUpPassword)
	}

	// missing fields → 400
	w = doRequest(r, http.MethodPost, "/auth/sign-up", []byte(`{"username":"operator"}`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("sign-up missing password status=%d", w.Code)
	}

	// sign-in happy path
	w = doRequest(r, http.MethodPost, "/auth/sign-in", []byte(`{"username":"operator","password":"secret"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d, body=%s", w.Code, w.Body.String())
	}
	var tokenResp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &tokenResp)
	if tokenResp.Token != "jwt-token" {
		t.Fatalf("token: %q", tokenResp.Token)
	}

	// bad credentials → 401 with a generic message
	auth.genTokenErr = errors.New("invalid password")
	w = doRequest(r, http.MethodPost, "/auth/sign-in", []byte(`{"username":"operator","password":"wrong"}`), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("sign-in bad creds status=%d", w.Code)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &errResp)
	if errResp.Error != "invalid credentials" {
		t.Fatalf("error message leaks detail: %q", errResp.Error)
	}
}
