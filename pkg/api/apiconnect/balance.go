package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// BalanceServiceName is the fully-qualified name of the BalanceService.
const BalanceServiceName = packageName + ".BalanceService"

// Procedure paths of the BalanceService.
const (
	BalanceServiceGetPairwiseBalanceProcedure   = "/splitledger.v1.BalanceService/GetPairwiseBalance"
	BalanceServiceGetBalanceSummaryProcedure    = "/splitledger.v1.BalanceService/GetBalanceSummary"
	BalanceServiceGetAdvancedBreakdownProcedure = "/splitledger.v1.BalanceService/GetAdvancedBreakdown"
	BalanceServiceGetTotalBalancesProcedure     = "/splitledger.v1.BalanceService/GetTotalBalances"
)

// BalanceServiceHandler is implemented by the server side of the BalanceService.
type BalanceServiceHandler interface {
	GetPairwiseBalance(context.Context, *connect.Request[api.GetPairwiseBalanceRequest]) (*connect.Response[api.GetPairwiseBalanceResponse], error)
	GetBalanceSummary(context.Context, *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error)
	GetAdvancedBreakdown(context.Context, *connect.Request[api.GetAdvancedBreakdownRequest]) (*connect.Response[api.GetAdvancedBreakdownResponse], error)
	GetTotalBalances(context.Context, *connect.Request[api.GetTotalBalancesRequest]) (*connect.Response[api.GetTotalBalancesResponse], error)
}

// NewBalanceServiceHandler builds an HTTP handler for svc. It returns the path to
// mount it on.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getPairwiseBalance := connect.NewUnaryHandler(BalanceServiceGetPairwiseBalanceProcedure, svc.GetPairwiseBalance, opts...)
	getBalanceSummary := connect.NewUnaryHandler(BalanceServiceGetBalanceSummaryProcedure, svc.GetBalanceSummary, opts...)
	getAdvancedBreakdown := connect.NewUnaryHandler(BalanceServiceGetAdvancedBreakdownProcedure, svc.GetAdvancedBreakdown, opts...)
	getTotalBalances := connect.NewUnaryHandler(BalanceServiceGetTotalBalancesProcedure, svc.GetTotalBalances, opts...)
	return servicePath("BalanceService"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BalanceServiceGetPairwiseBalanceProcedure:
			getPairwiseBalance.ServeHTTP(w, r)
		case BalanceServiceGetBalanceSummaryProcedure:
			getBalanceSummary.ServeHTTP(w, r)
		case BalanceServiceGetAdvancedBreakdownProcedure:
			getAdvancedBreakdown.ServeHTTP(w, r)
		case BalanceServiceGetTotalBalancesProcedure:
			getTotalBalances.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// BalanceServiceClient is a client for the BalanceService.
type BalanceServiceClient struct {
	getPairwiseBalance   *connect.Client[api.GetPairwiseBalanceRequest, api.GetPairwiseBalanceResponse]
	getBalanceSummary    *connect.Client[api.GetBalanceSummaryRequest, api.GetBalanceSummaryResponse]
	getAdvancedBreakdown *connect.Client[api.GetAdvancedBreakdownRequest, api.GetAdvancedBreakdownResponse]
	getTotalBalances     *connect.Client[api.GetTotalBalancesRequest, api.GetTotalBalancesResponse]
}

// NewBalanceServiceClient constructs a client for the BalanceService at baseURL
// (for example, http://localhost:8080).
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BalanceServiceClient {
	opts = clientOptions(opts)
	return &BalanceServiceClient{
		getPairwiseBalance:   connect.NewClient[api.GetPairwiseBalanceRequest, api.GetPairwiseBalanceResponse](httpClient, baseURL+BalanceServiceGetPairwiseBalanceProcedure, opts...),
		getBalanceSummary:    connect.NewClient[api.GetBalanceSummaryRequest, api.GetBalanceSummaryResponse](httpClient, baseURL+BalanceServiceGetBalanceSummaryProcedure, opts...),
		getAdvancedBreakdown: connect.NewClient[api.GetAdvancedBreakdownRequest, api.GetAdvancedBreakdownResponse](httpClient, baseURL+BalanceServiceGetAdvancedBreakdownProcedure, opts...),
		getTotalBalances:     connect.NewClient[api.GetTotalBalancesRequest, api.GetTotalBalancesResponse](httpClient, baseURL+BalanceServiceGetTotalBalancesProcedure, opts...),
	}
}

// GetPairwiseBalance calls BalanceService.GetPairwiseBalance.
func (c *BalanceServiceClient) GetPairwiseBalance(ctx context.Context, req *connect.Request[api.GetPairwiseBalanceRequest]) (*connect.Response[api.GetPairwiseBalanceResponse], error) {
	return c.getPairwiseBalance.CallUnary(ctx, req)
}

// GetBalanceSummary calls BalanceService.GetBalanceSummary.
func (c *BalanceServiceClient) GetBalanceSummary(ctx context.Context, req *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	return c.getBalanceSummary.CallUnary(ctx, req)
}

// GetAdvancedBreakdown calls BalanceService.GetAdvancedBreakdown.
func (c *BalanceServiceClient) GetAdvancedBreakdown(ctx context.Context, req *connect.Request[api.GetAdvancedBreakdownRequest]) (*connect.Response[api.GetAdvancedBreakdownResponse], error) {
	return c.getAdvancedBreakdown.CallUnary(ctx, req)
}

// GetTotalBalances calls BalanceService.GetTotalBalances.
func (c *BalanceServiceClient) GetTotalBalances(ctx context.Context, req *connect.Request[api.GetTotalBalancesRequest]) (*connect.Response[api.GetTotalBalancesResponse], error) {
	return c.getTotalBalances.CallUnary(ctx, req)
}
