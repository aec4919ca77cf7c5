// Package sse implements the client side of the notification stream: a
// single long-lived server-push connection with automatic reconnection.
//
// The connection lifecycle follows a small state machine:
//
//	DISCONNECTED --Connect--> CONNECTING --open--> CONNECTED
//	CONNECTED --transport error--> DISCONNECTED (retry scheduled)
//	DISCONNECTED --retry timer--> CONNECTING
//	any state --Disconnect--> DISCONNECTED (terminal until Connect)
//
// Transport errors are retried with a configurable BackoffStrategy,
// defaulting to the fixed 5 second interval the admin dashboard has
// always used. Malformed frames are logged and dropped without closing
// the connection. A frame with type "connected" is a control frame: it
// carries the server-assigned client identifier and never surfaces as a
// notification.
//
// Consumers observe the client through Subscribe rather than callbacks,
// so the badge, the toast system and the connection indicator can each
// hold an independent subscription:
//
//	client, err := sse.New(cfg)
//	if err != nil {
//	    return err
//	}
//	sub := client.Subscribe(ctx)
//	client.Connect(ctx)
//
//	for msg := range sub.Receive() {
//	    switch ev := msg.Data; ev.Type {
//	    case sse.EventConnected:
//	        // ev.ClientID is the server-assigned identifier
//	    case sse.EventNotification:
//	        store.Prepend(*ev.Notification)
//	    case sse.EventDisconnected:
//	        // reflected in the connection indicator; reconnect is automatic
//	    }
//	}
package sse
