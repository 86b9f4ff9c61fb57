package core

// TextMessage is a short message destined for a mobile number.
type TextMessage struct {
	To   string
	Body string
}

// SMSService is any service that can deliver text messages.
// Delivery failures are the service's problem; callers fire and forget.
type SMSService interface {
	SendMessages(messages ...*TextMessage)
}
