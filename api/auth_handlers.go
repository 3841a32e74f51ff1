package main

import "net/http"

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type codeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// sendVerification checks the admin password and sends a one-time code.
func (app *application) sendVerification(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	ch, err := app.Auth.StartLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, ch)
}

// verifyCode exchanges a verification code for a session token.
func (app *application) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	session, err := app.Auth.CompleteLogin(r.Context(), req.Email, req.Code)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, session)
}
