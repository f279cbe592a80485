package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nyota-loans/ms-go-payments/app/factory"
	"github.com/nyota-loans/ms-go-payments/app/mapper"
	"github.com/nyota-loans/ms-go-payments/app/service"
	"github.com/nyota-loans/ms-go-payments/app/types"
)

type LoanController struct {
	loanService *service.LoanService
	logger      logrus.FieldLogger
}

func NewLoanController(loanService *service.LoanService) *LoanController {
	return &LoanController{
		loanService: loanService,
		logger:      factory.NewModuleLogger("loans-controller"),
	}
}

func (c *LoanController) CreateLoanApplication(ctx echo.Context) error {
	req, err := types.NewCreateLoanApplicationRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	application, err := c.loanService.CreateLoanApplication(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidPhoneNumber):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create loan application failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.LoanApplicationEnvelopeResponse{
		LoanApplication: mapper.LoanApplicationToResponse(application),
	})
}

func (c *LoanController) GetLoanApplication(ctx echo.Context) error {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		return c.writeError(ctx, http.StatusBadRequest, "loan application id is required")
	}

	application, err := c.loanService.GetLoanApplication(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLoanNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "loan application not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get loan application failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.LoanApplicationEnvelopeResponse{
		LoanApplication: mapper.LoanApplicationToResponse(application),
	})
}

func (c *LoanController) ListLoanApplications(ctx echo.Context) error {
	userID := strings.TrimSpace(ctx.QueryParam("user_id"))

	applications, err := c.loanService.ListLoanApplications(ctx.Request().Context(), userID, 0)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, "user_id is required")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List loan applications failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListLoanApplicationsResponse{
		LoanApplications: mapper.LoanApplicationsToResponse(applications),
	})
}

func (c *LoanController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Success: false, Message: message})
}
