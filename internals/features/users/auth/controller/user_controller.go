package controller

import (
	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/features/users/auth/dto"
	"admissions_backend/internals/features/users/auth/service"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

type UserController struct {
	Svc *service.AuthService
}

func NewUserController(svc *service.AuthService) *UserController {
	return &UserController{Svc: svc}
}

// POST /api/a/users
func (uc *UserController) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := uc.Svc.CreateUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "user created", dto.FromUser(*u))
}

// GET /api/a/users
func (uc *UserController) List(c *fiber.Ctx) error {
	var q dto.ListUserQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := uc.Svc.ListUsers(c.UserContext(), q, p)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "users", dto.FromUsers(rows), helper.BuildMeta(total, p))
}

// GET /api/a/users/:id
func (uc *UserController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	u, err := uc.Svc.Me(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "user", dto.FromUser(*u))
}

// PATCH /api/a/users/:id
func (uc *UserController) Update(c *fiber.Ctx) error {
	actor, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := uc.Svc.UpdateUser(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "user updated", dto.FromUser(*u))
}

// PATCH /api/a/users/:id/deactivate
func (uc *UserController) Deactivate(c *fiber.Ctx) error {
	actor, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	u, err := uc.Svc.DeactivateUser(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "user deactivated", dto.FromUser(*u))
}
