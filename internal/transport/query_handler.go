// Package transport exposes the query service's HTTP JSON API.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gyoonit/blocksci/internal/chaindb"
	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/internal/chaindb/script"
)

// Engine is the chain surface the handler serves. *chaindb.Blockchain
// implements it.
type Engine interface {
	Params() *chaincfg.Params
	BlockCount() int
	TxCount() uint64
	Block(i int) (model.Block, error)
	BlockWithHash(hash chainhash.Hash) (model.Block, error)
	BlockTransactions(b model.Block) iter.Seq2[model.Transaction, error]
	TxWithIndex(index uint64) (model.Transaction, error)
	TxWithHash(hash chainhash.Hash) (model.Transaction, error)
	AddressFromString(encoded string) (*script.Variant, error)
	AddressesWithPrefix(prefix string) ([]script.Variant, error)
	AddressCount(t model.AddressType) (uint64, error)
	SegmentIndexes(n int) ([]chaindb.BlockRange, error)
}

// Metrics records handled requests.
type Metrics interface {
	Observe(route string, code int, started time.Time)
}

// QueryHandler serves read-only chain queries as JSON.
type QueryHandler struct {
	engine  Engine
	log     *zap.Logger
	metrics Metrics
}

// NewQueryHandler returns a QueryHandler instance.
func NewQueryHandler(engine Engine, log *zap.Logger, m Metrics) *QueryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryHandler{engine: engine, log: log, metrics: m}
}

// Register mounts every route on mux.
func (h *QueryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/stats", h.instrument("/v1/stats", h.stats))
	mux.HandleFunc("GET /v1/blocks/{ref}", h.instrument("/v1/blocks/{ref}", h.block))
	mux.HandleFunc("GET /v1/blocks/{ref}/transactions", h.instrument("/v1/blocks/{ref}/transactions", h.blockTransactions))
	mux.HandleFunc("GET /v1/transactions/{ref}", h.instrument("/v1/transactions/{ref}", h.transaction))
	mux.HandleFunc("GET /v1/addresses", h.instrument("/v1/addresses", h.addressesByPrefix))
	mux.HandleFunc("GET /v1/addresses/{address}", h.instrument("/v1/addresses/{address}", h.address))
	mux.HandleFunc("GET /v1/address-types/{type}/count", h.instrument("/v1/address-types/{type}/count", h.addressTypeCount))
	mux.HandleFunc("GET /v1/segments", h.instrument("/v1/segments", h.segments))
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *QueryHandler) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(recorder, r)
		if h.metrics != nil {
			h.metrics.Observe(route, recorder.code, started)
		}
	}
}

func (h *QueryHandler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn("write response", zap.Error(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps engine errors onto HTTP statuses: absent entities are 404,
// rejected arguments 400, dataset corruption 500.
func (h *QueryHandler) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, model.ErrOutOfRange),
		errors.Is(err, model.ErrInvalidArgument),
		errors.Is(err, model.ErrMalformedInput):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		h.log.Error("query failed", zap.Error(err))
	}
	h.writeJSON(w, code, errorResponse{Error: err.Error()})
}

type statsResponse struct {
	Network      string `json:"network"`
	Blocks       int    `json:"blocks"`
	Transactions uint64 `json:"transactions"`
}

func (h *QueryHandler) stats(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, statsResponse{
		Network:      h.engine.Params().Name,
		Blocks:       h.engine.BlockCount(),
		Transactions: h.engine.TxCount(),
	})
}

type blockResponse struct {
	Height       int    `json:"height"`
	Hash         string `json:"hash"`
	Time         string `json:"time"`
	FirstTxIndex uint64 `json:"first_tx_index"`
	TxCount      uint32 `json:"tx_count"`
}

func renderBlock(b model.Block) blockResponse {
	return blockResponse{
		Height:       b.Height,
		Hash:         b.Hash.String(),
		Time:         b.Time.UTC().Format(time.RFC3339),
		FirstTxIndex: b.FirstTxIndex,
		TxCount:      b.TxCount,
	}
}

// resolveBlock accepts a height, possibly negative, or a block hash.
func (h *QueryHandler) resolveBlock(ref string) (model.Block, error) {
	if height, err := strconv.Atoi(ref); err == nil {
		return h.engine.Block(height)
	}
	hash, err := chainhash.NewHashFromStr(ref)
	if err != nil {
		return model.Block{}, fmt.Errorf("block reference is neither a height nor a hash: %w", model.ErrMalformedInput)
	}
	return h.engine.BlockWithHash(*hash)
}

func (h *QueryHandler) block(w http.ResponseWriter, r *http.Request) {
	b, err := h.resolveBlock(r.PathValue("ref"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, renderBlock(b))
}

type outputResponse struct {
	Value       int64  `json:"value"`
	ValueBTC    string `json:"value_btc"`
	AddressType string `json:"address_type"`
	AddressNum  uint32 `json:"address_num"`
	Spent       bool   `json:"spent"`
}

type inputResponse struct {
	Coinbase bool   `json:"coinbase"`
	PrevTx   uint64 `json:"prev_tx"`
	PrevOut  uint32 `json:"prev_out"`
}

type txResponse struct {
	Index   uint64           `json:"index"`
	Hash    string           `json:"hash"`
	Height  int              `json:"height"`
	Inputs  []inputResponse  `json:"inputs"`
	Outputs []outputResponse `json:"outputs"`
}

// satoshisPerBTC renders output values in whole coins alongside satoshis.
var satoshisPerBTC = decimal.NewFromInt(1e8)

func renderTx(tx model.Transaction) txResponse {
	out := txResponse{
		Index:   tx.Index,
		Hash:    tx.Hash.String(),
		Height:  tx.Height,
		Inputs:  make([]inputResponse, len(tx.Inputs)),
		Outputs: make([]outputResponse, len(tx.Outputs)),
	}
	for i, in := range tx.Inputs {
		out.Inputs[i] = inputResponse{Coinbase: in.Coinbase, PrevTx: in.PrevTx, PrevOut: in.PrevOut}
	}
	for i, o := range tx.Outputs {
		out.Outputs[i] = outputResponse{
			Value:       o.Value,
			ValueBTC:    decimal.NewFromInt(o.Value).Div(satoshisPerBTC).String(),
			AddressType: o.Address.Type.String(),
			AddressNum:  o.Address.Num,
			Spent:       o.Spent(),
		}
	}
	return out
}

// resolveTx accepts a global index or a transaction hash.
func (h *QueryHandler) resolveTx(ref string) (model.Transaction, error) {
	if index, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return h.engine.TxWithIndex(index)
	}
	hash, err := chainhash.NewHashFromStr(ref)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction reference is neither an index nor a hash: %w", model.ErrMalformedInput)
	}
	return h.engine.TxWithHash(*hash)
}

func (h *QueryHandler) transaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.resolveTx(r.PathValue("ref"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, renderTx(tx))
}

func (h *QueryHandler) blockTransactions(w http.ResponseWriter, r *http.Request) {
	b, err := h.resolveBlock(r.PathValue("ref"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	txs := make([]txResponse, 0, b.TxCount)
	for tx, err := range h.engine.BlockTransactions(b) {
		if err != nil {
			h.writeError(w, err)
			return
		}
		txs = append(txs, renderTx(tx))
	}
	h.writeJSON(w, http.StatusOK, txs)
}

type addressResponse struct {
	Address string `json:"address,omitempty"`
	Kind    string `json:"kind"`
	Known   bool   `json:"known"`
}

func renderVariant(v script.Variant, params *chaincfg.Params) addressResponse {
	resp := addressResponse{Kind: v.Kind().String(), Known: true}
	if encoded, err := v.Encode(params); err == nil {
		resp.Address = encoded
	}
	return resp
}

func (h *QueryHandler) address(w http.ResponseWriter, r *http.Request) {
	encoded := r.PathValue("address")
	v, err := h.engine.AddressFromString(encoded)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if v == nil {
		// Well-formed but never seen on chain.
		h.writeJSON(w, http.StatusOK, addressResponse{Address: encoded, Known: false})
		return
	}
	h.writeJSON(w, http.StatusOK, renderVariant(*v, h.engine.Params()))
}

func (h *QueryHandler) addressesByPrefix(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	variants, err := h.engine.AddressesWithPrefix(prefix)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]addressResponse, len(variants))
	for i, v := range variants {
		out[i] = renderVariant(v, h.engine.Params())
	}
	h.writeJSON(w, http.StatusOK, out)
}

type addressCountResponse struct {
	Type  string `json:"type"`
	Count uint64 `json:"count"`
}

func (h *QueryHandler) addressTypeCount(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("type")
	t, err := model.ParseAddressType(name)
	if err != nil {
		h.writeError(w, fmt.Errorf("%v: %w", err, model.ErrInvalidArgument))
		return
	}
	count, err := h.engine.AddressCount(t)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, addressCountResponse{Type: name, Count: count})
}

type segmentResponse struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

func (h *QueryHandler) segments(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil {
		h.writeError(w, fmt.Errorf("count must be an integer: %w", model.ErrInvalidArgument))
		return
	}
	ranges, err := h.engine.SegmentIndexes(count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]segmentResponse, len(ranges))
	for i, rg := range ranges {
		out[i] = segmentResponse{Start: rg.Start, Stop: rg.Stop}
	}
	h.writeJSON(w, http.StatusOK, out)
}
