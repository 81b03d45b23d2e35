package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// TextGenerator completes a prompt.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Static replies used whenever the text generator fails.
const (
	ChatFallback           = "I'm sorry, I'm having trouble connecting to the concierge service right now."
	RecommendationFallback = `{"recommendations": []}`
)

const chatPrompt = `You are the AI Concierge for LuxeStay, a luxury hotel booking platform. Here are the key details about our hotel:
- **Breakfast**: Continental breakfast is INCLUDED with ALL bookings.
- **Check-in**: 2:00 PM
- **Check-out**: 11:00 AM
- **Amenities**: Free high-speed Wi-Fi, 24/7 Gym, Rooftop Swimming Pool, and Luxury Spa.
- **Location**: 123 Luxury Avenue, Paradise City.
- **Parking**: Free valet parking for all guests.
Your role is to assist guests with questions about our rooms, amenities, and policies based on this information. Be polite, professional, and helpful. Keep answers concise. If a guest asks something not covered here, politely say you will check with the front desk. Do not answer questions unrelated to the hotel.`

const recommendPrompt = `You are an expert hotel booking assistant for LuxeStay. Your goal is to recommend the best rooms for a user based on their natural language request. You will be provided with the User's Request and a JSON list of Available Rooms. Analyze the user's needs (budget, vibe, amenities, etc.) and match them with the rooms. Return a JSON Object with a single key 'recommendations' which is a list of objects. Each object in the list must have: 'roomId' (Long, matching the input ID), 'matchScore' (Integer 0-100), and 'reason' (String, a personalized explanation of why this room fits their request). Do NOT return markdown formatting (like ` + "```json" + `), just the raw JSON string.`

// Concierge answers guest questions and ranks rooms. It never fails:
// generator errors degrade to the static fallbacks.
type Concierge struct {
	gen     TextGenerator
	catalog *RoomCatalog
}

// NewConcierge answers with fallbacks when gen is nil.
func NewConcierge(gen TextGenerator, catalog *RoomCatalog) *Concierge {
	return &Concierge{gen: gen, catalog: catalog}
}

// Chat answers a free-form guest question.
func (c *Concierge) Chat(ctx context.Context, message string) string {
	if c.gen == nil {
		return ChatFallback
	}
	out, err := c.gen.Complete(ctx, chatPrompt+"\n\nUser Question: "+message)
	if err != nil || strings.TrimSpace(out) == "" {
		logrus.WithError(err).Warn("concierge chat failed")
		return ChatFallback
	}
	return out
}

type roomSummary struct {
	ID          uint64 `json:"id"`
	RoomType    string `json:"roomType"`
	RoomPrice   string `json:"roomPrice"`
	Description string `json:"roomDescription"`
}

// RecommendRooms returns the generator's JSON ranking of the inventory for
// query, with any markdown code fences stripped.
func (c *Concierge) RecommendRooms(ctx context.Context, query string) string {
	if c.gen == nil {
		return RecommendationFallback
	}
	rooms, err := c.catalog.List(ctx)
	if err != nil {
		logrus.WithError(err).Warn("concierge: list rooms failed")
		return RecommendationFallback
	}
	inventory, err := json.Marshal(summarize(rooms))
	if err != nil {
		return RecommendationFallback
	}
	out, err := c.gen.Complete(ctx, recommendPrompt+"\n\nUser Request: "+query+"\n\nAvailable Rooms: "+string(inventory))
	if err != nil {
		logrus.WithError(err).Warn("concierge recommendations failed")
		return RecommendationFallback
	}
	out = stripFences(out)
	if out == "" {
		return RecommendationFallback
	}
	return out
}

func summarize(rooms []model.Room) []roomSummary {
	out := make([]roomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomSummary{ID: r.ID, RoomType: r.Type, RoomPrice: r.Price.StringFixed(2), Description: r.Description})
	}
	return out
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
