package dto

type QueryRequest struct {
	Query    string `json:"query" validate:"required"`
	Route    string `json:"route"`
	ThreadId string `json:"threadId,omitempty"`
}

type QueryResponse struct {
	Message  string               `json:"message"`
	ThreadId string               `json:"threadId"`
	Actions  []AssistantActionDTO `json:"actions"`
}

type AssistantActionDTO struct {
	Type        string `json:"type"` // "highlight" | "navigate"
	ElementId   string `json:"elementId,omitempty"`
	Description string `json:"description,omitempty"`
	Route       string `json:"route,omitempty"`
}

type RouteContextResponse struct {
	Route        string         `json:"route"`
	Description  string         `json:"description"`
	Elements     []UIElementDTO `json:"elements"`
	ApiCalls     []string       `json:"apiCalls"`
	Dependencies []string       `json:"dependencies,omitempty"`
	UserActions  []string       `json:"userActions"`
}

type UIElementDTO struct {
	Id          string `json:"id"`
	Description string `json:"description"`
}
