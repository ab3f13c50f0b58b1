package types

// Feishu message types
const (
	MsgTypeText = "text"
	MsgTypePost = "post"
)

// Post element tags
const (
	TagText = "text"
	TagLink = "a"
)

// OutboundMessage is the JSON body posted to the chat webhook
type OutboundMessage struct {
	MsgType string         `json:"msg_type"`
	Content MessageContent `json:"content"`
}

// MessageContent carries either a plain text body or a rich post body
type MessageContent struct {
	Text string              `json:"text,omitempty"`
	Post map[string]PostBody `json:"post,omitempty"` // Keyed by locale, e.g. "zh_cn"
}

// PostBody is one localized rich-text post
type PostBody struct {
	Title   string          `json:"title"`
	Content [][]PostElement `json:"content"`
}

// PostElement is one inline element of a post paragraph
type PostElement struct {
	Tag      string `json:"tag"`
	Text     string `json:"text"`
	Href     string `json:"href,omitempty"`
	UnEscape bool   `json:"un_escape,omitempty"`
}
