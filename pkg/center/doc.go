// Package center is the notification facade consumed by the admin UI:
// one object exposing the connection state, the bounded notification
// list with unread count, and the connect/disconnect/mark-read/clear/
// refresh actions.
//
//	var streamCfg sse.Config
//	var apiCfg api.Config
//	config.MustLoad(&streamCfg)
//	config.MustLoad(&apiCfg)
//
//	stream, _ := sse.New(streamCfg)
//	rest, _ := api.New(apiCfg)
//
//	hub := center.New(ctx, center.Config{AutoConnect: true}, stream, rest)
//	defer hub.Close()
//
//	badge := hub.UnreadCount()
package center
