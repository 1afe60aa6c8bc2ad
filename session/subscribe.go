package session

import (
	"fmt"

	"stomp/frame"
	"stomp/header"
)

// subscribe installs the subscription entry before sending SUBSCRIBE, so an
// inbound MESSAGE can never race ahead of the table that would dispatch it.
// A non-nil onReceipt registers it under a freshly allocated receipt id
// and adds the corresponding header to the outgoing frame.
func (s *Session) subscribe(destination string, ackMode frame.AckMode, handler SubscribeHandler, extra []header.Header, onReceipt ReceiptHandler) (id string, receiptID string, err error) {
	id = s.nextSubscriptionID.next()

	opts := make([]frame.SubscribeOption, 0, len(extra)+1)
	for _, h := range extra {
		opts = append(opts, func(f *frame.Frame) { f.AddHeader(h.Name, h.Value) })
	}
	if onReceipt != nil {
		receiptID = s.nextReceiptID.next()
		opts = append(opts, func(f *frame.Frame) { f.AddHeader(header.NameReceipt, receiptID) })
	}

	s.mu.Lock()
	s.subscriptions[id] = subscriptionEntry{destination: destination, ackMode: ackMode, handler: handler}
	if onReceipt != nil {
		s.receipts[receiptID] = onReceipt
	}
	s.mu.Unlock()

	f := frame.Subscribe(id, destination, ackMode, opts...)
	if err := s.send(f); err != nil {
		s.mu.Lock()
		delete(s.subscriptions, id)
		if onReceipt != nil {
			delete(s.receipts, receiptID)
		}
		s.mu.Unlock()
		return "", "", err
	}
	return id, receiptID, nil
}

// Unsubscribe removes the subscription table entry and sends UNSUBSCRIBE.
// Unsubscribing an id not in the table is a usage error, returned without
// touching the wire.
func (s *Session) Unsubscribe(id string) error {
	s.mu.Lock()
	_, ok := s.subscriptions[id]
	if ok {
		delete(s.subscriptions, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("stomp/session: unsubscribe: unknown subscription id %q", id)
	}
	return s.send(frame.Unsubscribe(id))
}
