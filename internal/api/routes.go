package api

import (
	_ "github.com/algem/liquid-staking-service/docs"
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Post("/v1/stake", registerHandler(handlers.Stake))
	r.Post("/v1/unstake", registerHandler(handlers.Unstake))
	r.Post("/v1/claim", registerHandler(handlers.Claim))
	r.Post("/v1/claim-all", registerHandler(handlers.ClaimAll))
	r.Post("/v1/withdraw", registerHandler(handlers.Withdraw))
	r.Post("/v1/transfer", registerHandler(handlers.Transfer))
	r.Post("/v1/harvest", registerHandler(handlers.SyncHarvest))
	r.Post("/v1/faucet", registerHandler(handlers.Faucet))

	r.Get("/v1/rewards", registerHandler(handlers.GetRewards))
	r.Get("/v1/balances", registerHandler(handlers.GetBalances))
	r.Get("/v1/withdrawals", registerHandler(handlers.GetWithdrawals))
	r.Get("/v1/erashots", registerHandler(handlers.GetEraShots))
	r.Get("/v1/pools", registerHandler(handlers.GetPools))
	r.Get("/v1/stakers", registerHandler(handlers.GetStakers))
	r.Get("/v1/status", registerHandler(handlers.GetStatus))
	r.Get("/v1/eras/{era}", registerHandler(handlers.GetEra))
	r.Get("/v1/snapshots/{id}", registerHandler(handlers.GetSnapshotBalance))
	r.Get("/v1/dapps", registerHandler(handlers.GetDapps))
	r.Get("/v1/events", registerHandler(handlers.GetLedgerEvents))

	r.Post("/v1/admin/sync", registerHandler(handlers.Sync))
	r.Post("/v1/admin/eras/next", registerHandler(handlers.NextEra))
	r.Post("/v1/admin/erashot", registerHandler(handlers.EraShot))
	r.Post("/v1/admin/pools/{pool}", registerHandler(handlers.FillPool))
	r.Post("/v1/admin/revenue", registerHandler(handlers.WithdrawRevenue))
	r.Post("/v1/admin/dapps", registerHandler(handlers.Dapps))
	r.Post("/v1/admin/partners", registerHandler(handlers.Partners))
	r.Post("/v1/admin/partners-limit", registerHandler(handlers.PartnersLimit))
	r.Post("/v1/admin/managers", registerHandler(handlers.Managers))
	r.Post("/v1/admin/min-stake", registerHandler(handlers.MinStake))
	r.Post("/v1/admin/snapshots", registerHandler(handlers.TokenSnapshot))
	r.Post("/v1/admin/pause", registerHandler(handlers.Pause))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
