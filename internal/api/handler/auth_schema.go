package handler

import "github.com/marketbase/identity-service/internal/core/domain"

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	// Role is optional and limited to the self-assignable subset. Admin
	// accounts are created by an existing admin, never at registration.
	Role string `json:"role,omitempty" validate:"omitempty,oneof=customer business"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateProfileRequest struct {
	Name         string `json:"name" validate:"required,min=3,max=50"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address      string `json:"address,omitempty" validate:"omitempty,max=200"`
	City         string `json:"city,omitempty" validate:"omitempty,max=100"`
	Country      string `json:"country,omitempty" validate:"omitempty,max=100"`
	ZipCode      string `json:"zip_code,omitempty" validate:"omitempty,max=20"`
	ProfileImage string `json:"profile_image,omitempty" validate:"omitempty,url"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type authResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}
