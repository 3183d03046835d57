package api

import (
	"context"
	"log"
	"net/http"
	"time"

	a "treasury-node/modules/aggregate"
	"treasury-node/modules/treasury"

	"github.com/chebyrash/promise"
	"github.com/rs/cors"
)

// ===== constants =====

const shutdownTimeout = 5 * time.Second

// ===== types =====

type apiManager struct {
	server *http.Server
	conf   ApiConfig
	ts     treasury.TreasurySystem
}

// ===== interface assertion =====

var _ a.Plugin = &apiManager{}

func New(ts treasury.TreasurySystem, conf ApiConfig) *apiManager {
	return &apiManager{
		conf: conf,
		ts:   ts,
	}
}

// ===== implementing the a.Plugin interface =====

func (am *apiManager) Init() error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/deposit", am.handleDeposit)

	mux.HandleFunc("POST /api/v1/actions/submit", am.handleSubmitAction)
	mux.HandleFunc("POST /api/v1/actions/approve", am.handleApproveAction)
	mux.HandleFunc("POST /api/v1/actions/revoke", am.handleRevokeAction)
	mux.HandleFunc("POST /api/v1/actions/execute", am.handleExecuteAction)

	mux.HandleFunc("POST /api/v1/proposals/submit", am.handleSubmitProposal)
	mux.HandleFunc("POST /api/v1/proposals/approve", am.handleApproveProposal)
	mux.HandleFunc("POST /api/v1/proposals/execute", am.handleExecuteProposal)

	mux.HandleFunc("GET /api/v1/members", am.handleGetMembers)
	mux.HandleFunc("GET /api/v1/actions", am.handleGetAction)
	mux.HandleFunc("GET /api/v1/actions/count", am.handleGetActionCount)
	mux.HandleFunc("GET /api/v1/proposals", am.handleGetProposal)
	mux.HandleFunc("GET /api/v1/proposals/count", am.handleGetProposalCount)
	mux.HandleFunc("GET /api/v1/balance", am.handleGetBalance)
	mux.HandleFunc("GET /api/v1/contributions", am.handleGetContribution)

	am.server = &http.Server{
		Addr:    am.conf.GetHostAddr(),
		Handler: cors.Default().Handler(mux),
	}

	return nil
}

func (am *apiManager) Start() *promise.Promise[any] {
	return promise.New(func(resolve func(any), reject func(error)) {
		log.Printf("treasury API listening on %s", am.conf.GetHostAddr())

		if err := am.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			reject(err)
		}

		resolve(nil)
	})
}

func (am *apiManager) Stop() error {
	log.Println("Shutting down treasury API server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return am.server.Shutdown(ctx)
}
