package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	assetmemory "github.com/sheikh-saqib/timelocked-savings-ledger/internal/assets/memory"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/config"
	kafkaevents "github.com/sheikh-saqib/timelocked-savings-ledger/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/timelocked-savings-ledger/internal/interfaces"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/models"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/reward"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/savings"
	storememory "github.com/sheikh-saqib/timelocked-savings-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	policy, err := reward.NewPolicy(cfg.RewardParams)
	if err != nil {
		log.Fatalf("building reward policy: %v", err)
	}

	var store interfaces.DepositStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("opening postgres: %v", err)
		}
		defer db.Close()
		store = postgres.NewPostgresDepositStore(db)
	} else {
		store = storememory.NewMemoryDepositStore()
	}

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafkaevents.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
	}

	bank := assetmemory.NewBank(cfg.VaultAccount)

	ledger, err := savings.NewLedger(context.Background(), store, bank, publisher, policy, savings.Config{
		AdminPrincipal:   cfg.AdminPrincipal,
		VaultAccount:     cfg.VaultAccount,
		MinDepositAmount: cfg.MinDepositAmount,
	})
	if err != nil {
		log.Fatalf("building ledger: %v", err)
	}

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Dev faucet for the in-memory bank so local deposits have funds.
	r.Post("/bank/credit", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Holder string          `json:"holder"`
			Amount decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		bank.Credit(req.Holder, req.Amount)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/deposits", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Owner  string          `json:"owner"`
			Amount decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		ref, err := ledger.Deposit(r.Context(), req.Owner, req.Amount)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		response := struct {
			Owner        string          `json:"owner"`
			Amount       decimal.Decimal `json:"amount"`
			DepositIndex uint64          `json:"deposit_index"`
		}{
			Owner:        ref.Owner,
			Amount:       req.Amount,
			DepositIndex: ref.Index,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(response)
	})

	r.Get("/deposits/{owner}", func(w http.ResponseWriter, r *http.Request) {
		views, err := ledger.ListDeposits(r.Context(), chi.URLParam(r, "owner"))
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	})

	r.Get("/deposits/{owner}/{index}", func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
		if err != nil {
			http.Error(w, "invalid deposit index", http.StatusBadRequest)
			return
		}
		view, err := ledger.GetDeposit(r.Context(), chi.URLParam(r, "owner"), index)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view)
	})

	r.Post("/deposits/{owner}/{index}/withdraw", func(w http.ResponseWriter, r *http.Request) {
		// Identity is assumed resolved upstream; the header carries it.
		caller := r.Header.Get("X-Principal")
		if caller == "" {
			http.Error(w, "X-Principal header is required", http.StatusBadRequest)
			return
		}
		index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
		if err != nil {
			http.Error(w, "invalid deposit index", http.StatusBadRequest)
			return
		}

		ref := models.DepositRef{Owner: chi.URLParam(r, "owner"), Index: index}
		principal, rewardOrPenalty, err := ledger.Withdraw(r.Context(), caller, ref)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		response := struct {
			PrincipalPaid       decimal.Decimal `json:"principal_paid"`
			RewardOrPenaltyPaid decimal.Decimal `json:"reward_or_penalty_paid"`
		}{
			PrincipalPaid:       principal,
			RewardOrPenaltyPaid: rewardOrPenalty,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	r.Post("/admin/surplus", func(w http.ResponseWriter, r *http.Request) {
		caller := r.Header.Get("X-Principal")
		if caller == "" {
			http.Error(w, "X-Principal header is required", http.StatusBadRequest)
			return
		}

		extracted, err := ledger.ExtractSurplus(r.Context(), caller)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		response := struct {
			Extracted decimal.Decimal `json:"extracted"`
		}{
			Extracted: extracted,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	r.Get("/totals", func(w http.ResponseWriter, r *http.Request) {
		totals, err := ledger.Totals(r.Context())
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		response := struct {
			PrincipalLocked decimal.Decimal `json:"principal_locked"`
			RewardsReserved decimal.Decimal `json:"rewards_reserved"`
		}{
			PrincipalLocked: totals.PrincipalLocked,
			RewardsReserved: totals.RewardsReserved,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	log.Printf("Starting server on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// writeLedgerError maps domain errors to HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrDepositNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyWithdrawn):
		status = http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrTransferFailed):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}
