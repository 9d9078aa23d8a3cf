package handler

import (
	"errors"
	"net/http"

	"wallet-service/internal/adapter/http/dto"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), req.OwnerName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewWalletResponse(wallet))
}

// Get handles GET /api/v1/wallets/:walletId.
func (h *WalletHandler) Get(c *gin.Context) {
	walletID := c.Param("walletId")
	if err := dto.ValidateWalletID(walletID); err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

// AdjustBalance handles PUT /api/v1/wallets/:walletId/balance.
func (h *WalletHandler) AdjustBalance(c *gin.Context) {
	walletID := c.Param("walletId")
	if err := dto.ValidateWalletID(walletID); err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AdjustBalanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.walletSvc.AdjustBalance(c.Request.Context(), walletID, *req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ErrPayloadTooLarge()
		}
		return apperror.Validation("Invalid request body")
	}
	return nil
}
