package smssvc

import (
	"fmt"
	"log"

	"github.com/edubridge/backend/core"
)

// consoleService prints messages to the process log instead of hitting an
// SMS gateway. Used in development.
type consoleService struct {
	prefix string
}

var _ core.SMSService = (*consoleService)(nil)

func NewConsoleService() core.SMSService {
	return &consoleService{prefix: "[" + core.Conf.AppName + "] "}
}

func (svc consoleService) SendMessages(messages ...*core.TextMessage) {
	for _, msg := range messages {
		if msg == nil || msg.To == "" || msg.Body == "" {
			continue
		}
		log.Println(fmt.Sprintf("SMS To: %s\r\n%s", msg.To, svc.prefix+msg.Body))
	}
}
