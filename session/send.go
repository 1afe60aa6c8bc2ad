package session

import (
	"stomp/frame"
)

// doSend constructs a SEND frame from the canonical options plus an
// optional receipt registration, then submits it through the middleware
// chain. If onReceipt is non-nil, the handler is registered under a
// freshly allocated receipt id before the frame is enqueued.
func (s *Session) doSend(destination string, body []byte, opts []frame.SendOption, onReceipt ReceiptHandler) (receiptID string, err error) {
	if onReceipt != nil {
		receiptID = s.nextReceiptID.next()
		opts = append(opts, frame.WithReceipt(receiptID))
		s.mu.Lock()
		s.receipts[receiptID] = onReceipt
		s.mu.Unlock()
	}

	f := frame.Send(destination, body, opts...)
	if err := s.send(f); err != nil {
		if onReceipt != nil {
			s.mu.Lock()
			delete(s.receipts, receiptID)
			s.mu.Unlock()
		}
		return "", err
	}
	return receiptID, nil
}
