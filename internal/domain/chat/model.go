package chat

// Turn roles. The assistant role covers both plain replies and replies that
// carried function calls.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FunctionCallResult records one function the model asked for and what
// executing it produced. Unknown functions are recorded here with
// success=false rather than failing the turn.
type FunctionCallResult struct {
	Function string                 `json:"function"`
	Args     map[string]interface{} `json:"args,omitempty"`
	Success  bool                   `json:"success"`
	Result   map[string]interface{} `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Turn is one entry in a conversation. History is an append-only log the
// caller passes back on every turn.
type Turn struct {
	Role          string               `json:"role"`
	Content       string               `json:"content"`
	FunctionCalls []FunctionCallResult `json:"function_calls,omitempty"`
}

// Reply is the dispatcher output for one turn.
type Reply struct {
	Reply         string               `json:"reply"`
	FunctionCalls []FunctionCallResult `json:"function_calls,omitempty"`
	History       []Turn               `json:"history"`
}

// Prompt is the HTTP request body for a chat turn.
type Prompt struct {
	Message string `json:"message"`
	History []Turn `json:"history,omitempty"`
}
