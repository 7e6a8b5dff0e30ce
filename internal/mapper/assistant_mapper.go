package mapper

import (
	"onboarding-assistant-be/internal/dto"
	"onboarding-assistant-be/pkg/assistant"
	"onboarding-assistant-be/pkg/routecontext"
)

type AssistantMapper struct{}

func NewAssistantMapper() *AssistantMapper {
	return &AssistantMapper{}
}

func (m *AssistantMapper) ResponseToDTO(r *assistant.Response) *dto.QueryResponse {
	if r == nil {
		return nil
	}

	actions := make([]dto.AssistantActionDTO, 0, len(r.Actions))
	for _, a := range r.Actions {
		actions = append(actions, dto.AssistantActionDTO{
			Type:        a.Type,
			ElementId:   a.ElementID,
			Description: a.Description,
			Route:       a.Route,
		})
	}

	return &dto.QueryResponse{
		Message:  r.Message,
		ThreadId: r.ThreadID,
		Actions:  actions,
	}
}

func (m *AssistantMapper) RequestToQuery(req *dto.QueryRequest) assistant.Query {
	return assistant.Query{
		Text:     req.Query,
		Route:    req.Route,
		ThreadID: req.ThreadId,
	}
}

func (m *AssistantMapper) RouteContextToDTO(rc routecontext.RouteContext) *dto.RouteContextResponse {
	elements := make([]dto.UIElementDTO, 0, len(rc.Elements))
	for _, el := range rc.Elements {
		elements = append(elements, dto.UIElementDTO{Id: el.ID, Description: el.Description})
	}

	return &dto.RouteContextResponse{
		Route:        rc.Route,
		Description:  rc.Description,
		Elements:     elements,
		ApiCalls:     nonNil(rc.APICalls),
		Dependencies: rc.Dependencies,
		UserActions:  nonNil(rc.UserActions),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
