package conversation

// A Message is one entry of a conversation as shown to the user.
type Message struct {
	Name string `json:"name"`
}
