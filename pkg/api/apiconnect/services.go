package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// Fully-qualified service names.
const (
	AuthServiceName    = "splitledger.v1.AuthService"
	UserServiceName    = "splitledger.v1.UserService"
	ExpenseServiceName = "splitledger.v1.ExpenseService"
	BalanceServiceName = "splitledger.v1.BalanceService"
)

// Procedure paths, as sent in the URL of every RPC.
const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	UserServiceListUsersProcedure = "/" + UserServiceName + "/ListUsers"

	ExpenseServiceCreateExpenseProcedure   = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceGetUserExpensesProcedure = "/" + ExpenseServiceName + "/GetUserExpenses"
	ExpenseServiceGetAllExpensesProcedure  = "/" + ExpenseServiceName + "/GetAllExpenses"

	BalanceServiceGetBalanceProcedure        = "/" + BalanceServiceName + "/GetBalance"
	BalanceServiceExportBalanceProcedure     = "/" + BalanceServiceName + "/ExportBalance"
	BalanceServiceGetBalanceSummaryProcedure = "/" + BalanceServiceName + "/GetBalanceSummary"
)

// PublicProcedures may be called without a session token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

func handlerOptions(opts []connect.HandlerOption) connect.HandlerOption {
	return connect.WithHandlerOptions(append([]connect.HandlerOption{withCodec()}, opts...)...)
}

func clientOptions(opts []connect.ClientOption) connect.ClientOption {
	return connect.WithClientOptions(append([]connect.ClientOption{withCodec()}, opts...)...)
}

// route dispatches by procedure path under one service prefix.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func servicePath(name string) string {
	return "/" + name + "/"
}

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return servicePath(AuthServiceName), route(map[string]http.Handler{
		AuthServiceRegisterProcedure:       connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, o),
		AuthServiceLoginProcedure:          connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, o),
		AuthServiceGetCurrentUserProcedure: connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, o),
	})
}

// AuthServiceClient calls a remote auth service.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

// NewAuthServiceClient creates a client for the auth service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	o := clientOptions(opts)
	return &authServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, o),
		login:          connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, o),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, o),
	}
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// UserServiceHandler is implemented by the user directory service.
type UserServiceHandler interface {
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
}

// NewUserServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return servicePath(UserServiceName), route(map[string]http.Handler{
		UserServiceListUsersProcedure: connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, o),
	})
}

// UserServiceClient calls a remote user directory service.
type UserServiceClient interface {
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
}

type userServiceClient struct {
	listUsers *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
}

// NewUserServiceClient creates a client for the user service at baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &userServiceClient{
		listUsers: connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL+UserServiceListUsersProcedure, clientOptions(opts)),
	}
}

func (c *userServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

// ExpenseServiceHandler is implemented by the expense service.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetUserExpenses(context.Context, *connect.Request[api.GetUserExpensesRequest]) (*connect.Response[api.GetUserExpensesResponse], error)
	GetAllExpenses(context.Context, *connect.Request[api.GetAllExpensesRequest]) (*connect.Response[api.GetAllExpensesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return servicePath(ExpenseServiceName), route(map[string]http.Handler{
		ExpenseServiceCreateExpenseProcedure:   connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, o),
		ExpenseServiceGetUserExpensesProcedure: connect.NewUnaryHandler(ExpenseServiceGetUserExpensesProcedure, svc.GetUserExpenses, o),
		ExpenseServiceGetAllExpensesProcedure:  connect.NewUnaryHandler(ExpenseServiceGetAllExpensesProcedure, svc.GetAllExpenses, o),
	})
}

// ExpenseServiceClient calls a remote expense service.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetUserExpenses(context.Context, *connect.Request[api.GetUserExpensesRequest]) (*connect.Response[api.GetUserExpensesResponse], error)
	GetAllExpenses(context.Context, *connect.Request[api.GetAllExpensesRequest]) (*connect.Response[api.GetAllExpensesResponse], error)
}

type expenseServiceClient struct {
	createExpense   *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getUserExpenses *connect.Client[api.GetUserExpensesRequest, api.GetUserExpensesResponse]
	getAllExpenses  *connect.Client[api.GetAllExpensesRequest, api.GetAllExpensesResponse]
}

// NewExpenseServiceClient creates a client for the expense service at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	o := clientOptions(opts)
	return &expenseServiceClient{
		createExpense:   connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, o),
		getUserExpenses: connect.NewClient[api.GetUserExpensesRequest, api.GetUserExpensesResponse](httpClient, baseURL+ExpenseServiceGetUserExpensesProcedure, o),
		getAllExpenses:  connect.NewClient[api.GetAllExpensesRequest, api.GetAllExpensesResponse](httpClient, baseURL+ExpenseServiceGetAllExpensesProcedure, o),
	}
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetUserExpenses(ctx context.Context, req *connect.Request[api.GetUserExpensesRequest]) (*connect.Response[api.GetUserExpensesResponse], error) {
	return c.getUserExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetAllExpenses(ctx context.Context, req *connect.Request[api.GetAllExpensesRequest]) (*connect.Response[api.GetAllExpensesResponse], error) {
	return c.getAllExpenses.CallUnary(ctx, req)
}

// BalanceServiceHandler is implemented by the balance service.
type BalanceServiceHandler interface {
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	ExportBalance(context.Context, *connect.Request[api.ExportBalanceRequest]) (*connect.Response[api.ExportBalanceResponse], error)
	GetBalanceSummary(context.Context, *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error)
}

// NewBalanceServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return servicePath(BalanceServiceName), route(map[string]http.Handler{
		BalanceServiceGetBalanceProcedure:        connect.NewUnaryHandler(BalanceServiceGetBalanceProcedure, svc.GetBalance, o),
		BalanceServiceExportBalanceProcedure:     connect.NewUnaryHandler(BalanceServiceExportBalanceProcedure, svc.ExportBalance, o),
		BalanceServiceGetBalanceSummaryProcedure: connect.NewUnaryHandler(BalanceServiceGetBalanceSummaryProcedure, svc.GetBalanceSummary, o),
	})
}

// BalanceServiceClient calls a remote balance service.
type BalanceServiceClient interface {
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	ExportBalance(context.Context, *connect.Request[api.ExportBalanceRequest]) (*connect.Response[api.ExportBalanceResponse], error)
	GetBalanceSummary(context.Context, *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error)
}

type balanceServiceClient struct {
	getBalance        *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	exportBalance     *connect.Client[api.ExportBalanceRequest, api.ExportBalanceResponse]
	getBalanceSummary *connect.Client[api.GetBalanceSummaryRequest, api.GetBalanceSummaryResponse]
}

// NewBalanceServiceClient creates a client for the balance service at baseURL.
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BalanceServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	o := clientOptions(opts)
	return &balanceServiceClient{
		getBalance:        connect.NewClient[api.GetBalanceRequest, api.GetBalanceResponse](httpClient, baseURL+BalanceServiceGetBalanceProcedure, o),
		exportBalance:     connect.NewClient[api.ExportBalanceRequest, api.ExportBalanceResponse](httpClient, baseURL+BalanceServiceExportBalanceProcedure, o),
		getBalanceSummary: connect.NewClient[api.GetBalanceSummaryRequest, api.GetBalanceSummaryResponse](httpClient, baseURL+BalanceServiceGetBalanceSummaryProcedure, o),
	}
}

func (c *balanceServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *balanceServiceClient) ExportBalance(ctx context.Context, req *connect.Request[api.ExportBalanceRequest]) (*connect.Response[api.ExportBalanceResponse], error) {
	return c.exportBalance.CallUnary(ctx, req)
}

func (c *balanceServiceClient) GetBalanceSummary(ctx context.Context, req *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	return c.getBalanceSummary.CallUnary(ctx, req)
}
