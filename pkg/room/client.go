package room

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"holdem-server/pkg/protocol"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	// OccupantID is the authenticated identity of the connection
	// An empty ID is a spectator.
	OccupantID string

	// TableID is the table the client subscribed to
	TableID string

	dealer *Dealer
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, occupantID, tableID string) *Client {
	return &Client{
		send:       make(chan interface{}, 256),
		Close:      make(chan string),
		Conn:       conn,
		OccupantID: occupantID,
		TableID:    tableID,
	}
}

// Send send a message to the web client
// Returns false if the client is not keeping up.
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// String returns a traceable identifier for the occupant and table
func (c *Client) String() string {
	occupant := c.OccupantID
	if occupant == "" {
		occupant = "spectator"
	}

	return fmt.Sprintf("%s:%s", occupant, c.TableID)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *protocol.PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
