package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// GuildServiceName is the fully-qualified name of the GuildService service.
	GuildServiceName = "partyplanner.v1.GuildService"
	// PlannerServiceName is the fully-qualified name of the PlannerService service.
	PlannerServiceName = "partyplanner.v1.PlannerService"
)

// Procedure paths, in the form Connect routes them.
const (
	GuildServiceOpenSessionProcedure   = "/partyplanner.v1.GuildService/OpenSession"
	GuildServiceRefreshProcedure       = "/partyplanner.v1.GuildService/Refresh"
	GuildServiceGetGuildDataProcedure  = "/partyplanner.v1.GuildService/GetGuildData"
	GuildServiceGetTimelineProcedure   = "/partyplanner.v1.GuildService/GetTimeline"
	GuildServiceSearchMembersProcedure = "/partyplanner.v1.GuildService/SearchMembers"
	GuildServiceCacheStatusProcedure   = "/partyplanner.v1.GuildService/CacheStatus"
	GuildServiceClearCacheProcedure    = "/partyplanner.v1.GuildService/ClearCache"

	PlannerServiceAllocateProcedure      = "/partyplanner.v1.PlannerService/Allocate"
	PlannerServiceMoveMemberProcedure    = "/partyplanner.v1.PlannerService/MoveMember"
	PlannerServiceChangeRoleProcedure    = "/partyplanner.v1.PlannerService/ChangeRole"
	PlannerServiceRoleChoicesProcedure   = "/partyplanner.v1.PlannerService/RoleChoices"
	PlannerServiceAddEmptyPartyProcedure = "/partyplanner.v1.PlannerService/AddEmptyParty"
	PlannerServiceGetRosterProcedure     = "/partyplanner.v1.PlannerService/GetRoster"
	PlannerServiceCloseSessionProcedure  = "/partyplanner.v1.PlannerService/CloseSession"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
}

// routes dispatches by exact procedure path under one service prefix.
type routes map[string]http.Handler

func (rs routes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rs[r.URL.Path]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

// NewGuildServiceHandler builds an HTTP handler for svc. It returns the path
// on which to mount the handler and the handler itself.
func NewGuildServiceHandler(svc *GuildService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + GuildServiceName + "/", routes{
		GuildServiceOpenSessionProcedure:   connect.NewUnaryHandler(GuildServiceOpenSessionProcedure, svc.OpenSession, opts...),
		GuildServiceRefreshProcedure:       connect.NewUnaryHandler(GuildServiceRefreshProcedure, svc.Refresh, opts...),
		GuildServiceGetGuildDataProcedure:  connect.NewUnaryHandler(GuildServiceGetGuildDataProcedure, svc.GetGuildData, opts...),
		GuildServiceGetTimelineProcedure:   connect.NewUnaryHandler(GuildServiceGetTimelineProcedure, svc.GetTimeline, opts...),
		GuildServiceSearchMembersProcedure: connect.NewUnaryHandler(GuildServiceSearchMembersProcedure, svc.SearchMembers, opts...),
		GuildServiceCacheStatusProcedure:   connect.NewUnaryHandler(GuildServiceCacheStatusProcedure, svc.CacheStatus, opts...),
		GuildServiceClearCacheProcedure:    connect.NewUnaryHandler(GuildServiceClearCacheProcedure, svc.ClearCache, opts...),
	}
}

// NewPlannerServiceHandler builds an HTTP handler for svc. It returns the path
// on which to mount the handler and the handler itself.
func NewPlannerServiceHandler(svc *PlannerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + PlannerServiceName + "/", routes{
		PlannerServiceAllocateProcedure:      connect.NewUnaryHandler(PlannerServiceAllocateProcedure, svc.Allocate, opts...),
		PlannerServiceMoveMemberProcedure:    connect.NewUnaryHandler(PlannerServiceMoveMemberProcedure, svc.MoveMember, opts...),
		PlannerServiceChangeRoleProcedure:    connect.NewUnaryHandler(PlannerServiceChangeRoleProcedure, svc.ChangeRole, opts...),
		PlannerServiceRoleChoicesProcedure:   connect.NewUnaryHandler(PlannerServiceRoleChoicesProcedure, svc.RoleChoices, opts...),
		PlannerServiceAddEmptyPartyProcedure: connect.NewUnaryHandler(PlannerServiceAddEmptyPartyProcedure, svc.AddEmptyParty, opts...),
		PlannerServiceGetRosterProcedure:     connect.NewUnaryHandler(PlannerServiceGetRosterProcedure, svc.GetRoster, opts...),
		PlannerServiceCloseSessionProcedure:  connect.NewUnaryHandler(PlannerServiceCloseSessionProcedure, svc.CloseSession, opts...),
	}
}

// GuildServiceClient is a client for the partyplanner.v1.GuildService service.
type GuildServiceClient struct {
	openSession   *connect.Client[OpenSessionRequest, OpenSessionResponse]
	refresh       *connect.Client[SessionRequest, GuildDataResponse]
	getGuildData  *connect.Client[SessionRequest, GuildDataResponse]
	getTimeline   *connect.Client[SessionRequest, TimelineResponse]
	searchMembers *connect.Client[SearchMembersRequest, SearchMembersResponse]
	cacheStatus   *connect.Client[SessionRequest, CacheStatusResponse]
	clearCache    *connect.Client[SessionRequest, CacheStatusResponse]
}

// NewGuildServiceClient constructs a client for the GuildService at baseURL,
// for example http://localhost:8080.
func NewGuildServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GuildServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &GuildServiceClient{
		openSession:   connect.NewClient[OpenSessionRequest, OpenSessionResponse](httpClient, baseURL+GuildServiceOpenSessionProcedure, opts...),
		refresh:       connect.NewClient[SessionRequest, GuildDataResponse](httpClient, baseURL+GuildServiceRefreshProcedure, opts...),
		getGuildData:  connect.NewClient[SessionRequest, GuildDataResponse](httpClient, baseURL+GuildServiceGetGuildDataProcedure, opts...),
		getTimeline:   connect.NewClient[SessionRequest, TimelineResponse](httpClient, baseURL+GuildServiceGetTimelineProcedure, opts...),
		searchMembers: connect.NewClient[SearchMembersRequest, SearchMembersResponse](httpClient, baseURL+GuildServiceSearchMembersProcedure, opts...),
		cacheStatus:   connect.NewClient[SessionRequest, CacheStatusResponse](httpClient, baseURL+GuildServiceCacheStatusProcedure, opts...),
		clearCache:    connect.NewClient[SessionRequest, CacheStatusResponse](httpClient, baseURL+GuildServiceClearCacheProcedure, opts...),
	}
}

func (c *GuildServiceClient) OpenSession(ctx context.Context, req *connect.Request[OpenSessionRequest]) (*connect.Response[OpenSessionResponse], error) {
	return c.openSession.CallUnary(ctx, req)
}

func (c *GuildServiceClient) Refresh(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[GuildDataResponse], error) {
	return c.refresh.CallUnary(ctx, req)
}

func (c *GuildServiceClient) GetGuildData(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[GuildDataResponse], error) {
	return c.getGuildData.CallUnary(ctx, req)
}

func (c *GuildServiceClient) GetTimeline(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[TimelineResponse], error) {
	return c.getTimeline.CallUnary(ctx, req)
}

func (c *GuildServiceClient) SearchMembers(ctx context.Context, req *connect.Request[SearchMembersRequest]) (*connect.Response[SearchMembersResponse], error) {
	return c.searchMembers.CallUnary(ctx, req)
}

func (c *GuildServiceClient) CacheStatus(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CacheStatusResponse], error) {
	return c.cacheStatus.CallUnary(ctx, req)
}

func (c *GuildServiceClient) ClearCache(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CacheStatusResponse], error) {
	return c.clearCache.CallUnary(ctx, req)
}

// PlannerServiceClient is a client for the partyplanner.v1.PlannerService service.
type PlannerServiceClient struct {
	allocate      *connect.Client[AllocateRequest, AllocateResponse]
	moveMember    *connect.Client[MoveMemberRequest, MutationResponse]
	changeRole    *connect.Client[ChangeRoleRequest, MutationResponse]
	roleChoices   *connect.Client[RoleChoicesRequest, RoleChoicesResponse]
	addEmptyParty *connect.Client[SessionRequest, MutationResponse]
	getRoster     *connect.Client[SessionRequest, RosterResponse]
	closeSession  *connect.Client[SessionRequest, CloseSessionResponse]
}

// NewPlannerServiceClient constructs a client for the PlannerService at baseURL.
func NewPlannerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PlannerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &PlannerServiceClient{
		allocate:      connect.NewClient[AllocateRequest, AllocateResponse](httpClient, baseURL+PlannerServiceAllocateProcedure, opts...),
		moveMember:    connect.NewClient[MoveMemberRequest, MutationResponse](httpClient, baseURL+PlannerServiceMoveMemberProcedure, opts...),
		changeRole:    connect.NewClient[ChangeRoleRequest, MutationResponse](httpClient, baseURL+PlannerServiceChangeRoleProcedure, opts...),
		roleChoices:   connect.NewClient[RoleChoicesRequest, RoleChoicesResponse](httpClient, baseURL+PlannerServiceRoleChoicesProcedure, opts...),
		addEmptyParty: connect.NewClient[SessionRequest, MutationResponse](httpClient, baseURL+PlannerServiceAddEmptyPartyProcedure, opts...),
		getRoster:     connect.NewClient[SessionRequest, RosterResponse](httpClient, baseURL+PlannerServiceGetRosterProcedure, opts...),
		closeSession:  connect.NewClient[SessionRequest, CloseSessionResponse](httpClient, baseURL+PlannerServiceCloseSessionProcedure, opts...),
	}
}

func (c *PlannerServiceClient) Allocate(ctx context.Context, req *connect.Request[AllocateRequest]) (*connect.Response[AllocateResponse], error) {
	return c.allocate.CallUnary(ctx, req)
}

func (c *PlannerServiceClient) MoveMember(ctx context.Context, req *connect.Request[MoveMemberRequest]) (*connect.Response[MutationResponse], error) {
	return c.moveMember.CallUnary(ctx, req)
}

func (c *PlannerServiceClient) ChangeRole(ctx context.Context, req *connect.Request[ChangeRoleRequest]) (*connect.Response[MutationResponse], error) {
	return c.changeRole.CallUnary(ctx, req)
}

func (c *PlannerServiceClient) RoleChoices(ctx context.Context, req *connect.Request[RoleChoicesRequest]) (*connect.Response[RoleChoicesResponse], error) {
	return c.roleChoices.CallUnary(ctx, req)
}

func (c *PlannerServiceClient) AddEmptyParty(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[MutationResponse], error) {
	return c.addEmptyParty.CallUnary(ctx, req)
}

func (c *PlannerServiceClient) GetRoster(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[RosterResponse], error) {
	return c.getRoster.CallUnary(ctx, req)
}

func (c *PlannerServiceClient) CloseSession(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CloseSessionResponse], error) {
	return c.closeSession.CallUnary(ctx, req)
}
