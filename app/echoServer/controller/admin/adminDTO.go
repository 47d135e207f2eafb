package admin

type CreateUserReq struct {
	Email    string `json:"email" validate:"required,email"`
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin librarian user"`
}

// UpdateUserReq is a partial update: only non-null fields overwrite.
type UpdateUserReq struct {
	ID       int64   `json:"id" validate:"required,gt=0"`
	Email    *string `json:"email"`
	Login    *string `json:"login"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}
