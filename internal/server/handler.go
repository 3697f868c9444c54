package server

import (
	"errors"
	"log"

	"github.com/shithead-online/server/internal/apperrors"
	"github.com/shithead-online/server/internal/protocol"
	"github.com/shithead-online/server/internal/session"
)

// handleMessage dispatches one inbound frame. Every request yields exactly
// one response to the requester (plus broadcasts on successful mutations).
func (s *Server) handleMessage(c *Client, msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgJoinGame:
		s.handleJoinMessage(c, msg)
	case protocol.MsgPlayCards:
		s.handlePlayCardsMessage(c, msg)
	case protocol.MsgTakePile:
		s.handleTakePileMessage(c, msg)
	case protocol.MsgCheckPlayable:
		s.handleCheckPlayableMessage(c, msg)
	case protocol.MsgPing:
		c.SendMessage(protocol.MustNewMessage(protocol.MsgPong, nil))
	default:
		log.Printf("⚠️ unknown message type %q", msg.Type)
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

func (s *Server) handleJoinMessage(c *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinGamePayload](msg)
	if err != nil {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	sess, err := s.registry.Get(payload.GameID)
	if err != nil {
		s.sendError(c, err)
		return
	}
	if err := sess.Join(c, payload.PlayerID); err != nil {
		s.sendError(c, err)
		return
	}

	c.trackSession(sess)
	log.Printf("✅ player %s connected to game %s", payload.PlayerID, payload.GameID)
}

func (s *Server) handlePlayCardsMessage(c *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlayCardsPayload](msg)
	if err != nil {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	sess, err := s.registry.Get(payload.GameID)
	if err != nil {
		s.sendError(c, err)
		return
	}

	ok, err := sess.ApplyPlay(payload.PlayerID, payload.CardIDs)
	if err != nil {
		s.sendError(c, err)
		return
	}
	if !ok {
		// Rejected move: the player keeps the turn and picks again.
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMove))
	}
}

func (s *Server) handleTakePileMessage(c *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.TakePilePayload](msg)
	if err != nil {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	sess, err := s.registry.Get(payload.GameID)
	if err != nil {
		s.sendError(c, err)
		return
	}
	if err := sess.ApplyTakePile(payload.PlayerID); err != nil {
		s.sendError(c, err)
	}
}

func (s *Server) handleCheckPlayableMessage(c *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.CheckPlayablePayload](msg)
	if err != nil {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	sess, err := s.registry.Get(payload.GameID)
	if err != nil {
		s.sendError(c, err)
		return
	}

	playable, err := sess.CheckPlayable(payload.PlayerID)
	if err != nil {
		s.sendError(c, err)
		return
	}

	c.SendMessage(protocol.MustNewMessage(protocol.MsgCheckPlayableResult, protocol.CheckPlayableResultPayload{
		GameID:     payload.GameID,
		IsPlayable: playable,
	}))
}

// sendError translates a domain error into an ERROR message for the
// offending connection only.
func (s *Server) sendError(c session.Conn, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		c.SendMessage(protocol.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	c.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}
