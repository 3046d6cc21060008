package schema

// QueryType selects the relay query flavor.
type QueryType string

const (
	// QueryText carries a freshly extracted message to the backend.
	QueryText QueryType = "text"
	// QueryPoll asks the backend whether an answer is ready.
	QueryPoll QueryType = "poll"
)

// Query is the inner query object of a relay request.
type Query struct {
	Type    QueryType `json:"type"`
	Content string    `json:"content"`
}

// RelayRequest is the POST body sent to the answer backend.
type RelayRequest struct {
	QueryID   string `json:"query_id"`
	GroupName string `json:"groupname"`
	UserName  string `json:"username"`
	Query     Query  `json:"query"`
}

// AnswerBody is a single backend answer. Code zero marks success; any other
// code is a per-item failure with State holding diagnostic text.
type AnswerBody struct {
	Code       int      `json:"code"`
	State      string   `json:"state"`
	Text       string   `json:"text"`
	References []string `json:"references"`
}

// AnswerOK is the AnswerBody code for a successful answer.
const AnswerOK = 0

// AnswerPair echoes the originating request next to its answer.
type AnswerPair struct {
	Req RelayRequest `json:"req"`
	Rsp AnswerBody   `json:"rsp"`
}

// RelayResponse is the backend response envelope.
type RelayResponse struct {
	Msg     string       `json:"msg"`
	MsgCode int          `json:"msgCode"`
	Data    []AnswerPair `json:"data"`
}
