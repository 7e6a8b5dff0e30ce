package service

import (
	"context"
	"strings"

	"onboarding-assistant-be/internal/dto"
	"onboarding-assistant-be/internal/mapper"
	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/pkg/assistant"
	"onboarding-assistant-be/pkg/routecontext"
)

type IAssistantService interface {
	Query(ctx context.Context, req *dto.QueryRequest) *dto.QueryResponse
	GetContext(ctx context.Context, route string) *dto.RouteContextResponse
}

// QueryProcessor is satisfied by *assistant.Driver
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, q assistant.Query, rc routecontext.RouteContext) *assistant.Response
}

type assistantService struct {
	processor QueryProcessor
	resolver  routecontext.Resolver
	mapper    *mapper.AssistantMapper
	logger    logger.ILogger
}

func NewAssistantService(processor QueryProcessor, resolver routecontext.Resolver, log logger.ILogger) IAssistantService {
	return &assistantService{
		processor: processor,
		resolver:  resolver,
		mapper:    mapper.NewAssistantMapper(),
		logger:    log,
	}
}

func (s *assistantService) Query(ctx context.Context, req *dto.QueryRequest) *dto.QueryResponse {
	rc := s.resolver.Resolve(ctx, req.Route)

	s.logger.Info("assistant_service", "Processing query", map[string]interface{}{
		"route":        req.Route,
		"context":      rc.Route,
		"has_thread":   strings.TrimSpace(req.ThreadId) != "",
		"query_length": len(req.Query),
	})

	// A started run is driven to completion even if the client goes away
	resp := s.processor.ProcessQuery(context.WithoutCancel(ctx), s.mapper.RequestToQuery(req), rc)
	return s.mapper.ResponseToDTO(resp)
}

func (s *assistantService) GetContext(ctx context.Context, route string) *dto.RouteContextResponse {
	return s.mapper.RouteContextToDTO(s.resolver.Resolve(ctx, route))
}
