package user

type UpdateProfileReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type UpdateRoleReq struct {
	Role string `json:"role" validate:"required"`
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required"`
}
