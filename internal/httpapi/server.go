// Package httpapi exposes the ledger over a small JSON facade. Every
// request becomes one command submitted to the actor, so HTTP clients and
// TCP sessions observe the same serialized state.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/bankd/internal/actor"
	"github.com/MarkoPoloResearchLab/bankd/internal/protocol"
	"github.com/MarkoPoloResearchLab/bankd/pkg/bank"
)

// Run boots the HTTP facade and blocks until the context is cancelled or
// the server fails.
func Run(ctx context.Context, ledgerActor *actor.Actor, cfg Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("httpapi config: %w", err)
	}

	router := NewRouter(ledgerActor, cfg, logger)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("httpapi listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// NewRouter builds the gin engine with all ledger routes attached.
func NewRouter(ledgerActor *actor.Actor, cfg Config, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := &httpHandler{actor: ledgerActor, logger: logger}

	api := router.Group("/api")
	api.POST("/banks", handler.handleNewBank)
	api.GET("/banks/current", handler.handleWhichBank)
	api.PUT("/banks/current", handler.handleChangeBank)
	api.POST("/banks/:id/restore", handler.handleRestoreBank)
	api.POST("/accounts", handler.handleRegisterAccount)
	api.GET("/accounts/:id/balance", handler.handleBalance)
	api.GET("/accounts/:id/operations", handler.handleAccountOperations)
	api.POST("/accounts/:id/deposits", handler.handleDeposit)
	api.POST("/accounts/:id/withdrawals", handler.handleWithdraw)
	api.POST("/transfers", handler.handleTransfer)
	api.GET("/operations", handler.handleAllOperations)

	return router
}

type httpHandler struct {
	actor  *actor.Actor
	logger *zap.Logger
}

type commandResponse struct {
	Bank       uint64   `json:"bank"`
	Status     string   `json:"status"`
	OpID       string   `json:"op_id,omitempty"`
	Result     string   `json:"result,omitempty"`
	Error      string   `json:"error,omitempty"`
	ErrorType  string   `json:"error_type,omitempty"`
	Operations []string `json:"operations,omitempty"`
}

type bankSelector struct {
	BankID uint64 `json:"bank_id" binding:"required"`
}

type registerAccountRequest struct {
	Balance *uint64 `json:"balance" binding:"required"`
}

type amountRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

type transferRequest struct {
	Sender   string `json:"sender" binding:"required"`
	Receiver string `json:"receiver" binding:"required"`
	Amount   uint64 `json:"amount" binding:"required"`
}

func (handler *httpHandler) handleNewBank(ctx *gin.Context) {
	handler.submit(ctx, protocol.NewBank{}, http.StatusCreated)
}

func (handler *httpHandler) handleWhichBank(ctx *gin.Context) {
	handler.submit(ctx, protocol.WhichBank{}, http.StatusOK)
}

func (handler *httpHandler) handleChangeBank(ctx *gin.Context) {
	var request bankSelector
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with bank_id"))
		return
	}
	handler.submit(ctx, protocol.ChangeBank{BankID: request.BankID}, http.StatusOK)
}

func (handler *httpHandler) handleRestoreBank(ctx *gin.Context) {
	bankID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_bank_id", err.Error()))
		return
	}
	handler.submit(ctx, protocol.RestoreBank{BankID: bankID}, http.StatusCreated)
}

func (handler *httpHandler) handleRegisterAccount(ctx *gin.Context) {
	var request registerAccountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with balance"))
		return
	}
	handler.submit(ctx, protocol.RegisterAccount{Balance: *request.Balance}, http.StatusCreated)
}

func (handler *httpHandler) handleBalance(ctx *gin.Context) {
	accountID, ok := handler.accountID(ctx)
	if !ok {
		return
	}
	handler.submit(ctx, protocol.GetBalance{Account: accountID}, http.StatusOK)
}

func (handler *httpHandler) handleAccountOperations(ctx *gin.Context) {
	accountID, ok := handler.accountID(ctx)
	if !ok {
		return
	}
	handler.submit(ctx, protocol.ListAccountOperations{Account: accountID}, http.StatusOK)
}

func (handler *httpHandler) handleDeposit(ctx *gin.Context) {
	accountID, ok := handler.accountID(ctx)
	if !ok {
		return
	}
	var request amountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with amount"))
		return
	}
	handler.submit(ctx, protocol.Deposit{Account: accountID, Amount: request.Amount}, http.StatusOK)
}

func (handler *httpHandler) handleWithdraw(ctx *gin.Context) {
	accountID, ok := handler.accountID(ctx)
	if !ok {
		return
	}
	var request amountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with amount"))
		return
	}
	handler.submit(ctx, protocol.Withdraw{Account: accountID, Amount: request.Amount}, http.StatusOK)
}

func (handler *httpHandler) handleTransfer(ctx *gin.Context) {
	var request transferRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with sender, receiver and amount"))
		return
	}
	sender, err := bank.ParseAccountID(request.Sender)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_account_id", err.Error()))
		return
	}
	receiver, err := bank.ParseAccountID(request.Receiver)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_account_id", err.Error()))
		return
	}
	handler.submit(ctx, protocol.Transfer{Sender: sender, Receiver: receiver, Amount: request.Amount}, http.StatusOK)
}

func (handler *httpHandler) handleAllOperations(ctx *gin.Context) {
	handler.submit(ctx, protocol.ListAllOperations{}, http.StatusOK)
}

func (handler *httpHandler) accountID(ctx *gin.Context) (bank.AccountID, bool) {
	accountID, err := bank.ParseAccountID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_account_id", err.Error()))
		return bank.AccountID{}, false
	}
	return accountID, true
}

// submit forwards the command to the actor and maps the reply status onto
// an HTTP status: ok keeps the success code, fail becomes 404 and error
// becomes 422.
func (handler *httpHandler) submit(ctx *gin.Context, command protocol.Command, successStatus int) {
	reply, err := handler.actor.Submit(ctx.Request.Context(), command)
	if err != nil {
		handler.logger.Error("command submit failed", zap.Error(err))
		ctx.JSON(http.StatusServiceUnavailable, errorResponse("actor_unavailable", "command could not be executed"))
		return
	}

	response := commandResponse{
		Bank:       reply.Bank,
		Status:     reply.Status,
		OpID:       reply.OpID,
		Result:     reply.Result,
		Error:      reply.Error,
		ErrorType:  reply.Kind,
		Operations: reply.Lines,
	}
	switch reply.Status {
	case actor.StatusOK:
		ctx.JSON(successStatus, response)
	case actor.StatusFail:
		ctx.JSON(http.StatusNotFound, response)
	default:
		ctx.JSON(http.StatusUnprocessableEntity, response)
	}
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}
