package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wricardo/monopolio-paisa/game/board"
	"github.com/wricardo/monopolio-paisa/game/engine"
	"github.com/wricardo/monopolio-paisa/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	board      *board.Board
	logger     *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client used for API calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		board:  board.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Monopolio Paisa",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Monopolio Paisa - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Be the last player standing. Buy barrios, stations and utilities around
Medellín, collect rent from your rivals and avoid bankruptcy.

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions: List all active sessions
- get_session: Get session details and standings
- game_state: Get the current game state
- roll_dice: Roll for the current player and resolve the landing
- buy_property: Buy the space offered to the current player
- decline_purchase: Skip the offered purchase
- pay_rent: Pay the rent owed to another player
- pay_tax: Pay the tax of the space landed on
- end_turn: Pass the turn to the next player
- reset_game: Restart the session with its configuration
- game_log: Page through the game log
- describe_space: Inspect one board space (owner, rent, occupants)
- list_configs: List available configurations
- game_instructions: Get the complete rules

NOTE: Every turn is roll_dice, then settle any pending purchase, rent or tax, then end_turn.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

// sessionTool describes a tool whose only argument is the session id
func sessionTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "ID of the config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(sessionTool("get_session", "Get details and standings of a specific session"), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(sessionTool("game_state", "Get the current game state"), c.handleGameState)
	c.mcpServer.AddTool(sessionTool("roll_dice", "Roll the dice for the current player and move their token"), c.actionHandler("roll"))
	c.mcpServer.AddTool(sessionTool("buy_property", "Buy the space the current player landed on"), c.actionHandler("buy"))
	c.mcpServer.AddTool(sessionTool("decline_purchase", "Decline buying the space the current player landed on"), c.actionHandler("decline"))
	c.mcpServer.AddTool(sessionTool("pay_rent", "Pay the rent owed by the current player"), c.actionHandler("pay-rent"))
	c.mcpServer.AddTool(sessionTool("pay_tax", "Pay the tax owed by the current player"), c.actionHandler("pay-tax"))
	c.mcpServer.AddTool(sessionTool("end_turn", "End the current player's turn"), c.actionHandler("end-turn"))
	c.mcpServer.AddTool(sessionTool("reset_game", "Reset the game to its initial state"), c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_log",
		Description: "Get the game log with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Entries per page (default 20, max 100)",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameLog)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_space",
		Description: "Get detailed info about one board space: owner, current rent and who stands on it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"space_id": map[string]any{
					"type":        "integer",
					"description": "Space ID (0-39, 0 is GO)",
				},
			},
			Required: []string{"session_id", "space_id"},
		},
	}, c.handleDescribeSpace)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete game rules and tool usage guide",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID string, parts ...string) string {
	p := "/api/sessions/" + url.PathEscape(sessionID)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, c.formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.GameEnded {
			status = "finished"
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.formatGameState(&state)), nil
}

// actionHandler proxies a turn action to POST /api/sessions/{id}/{endpoint}
func (c *Client) actionHandler(endpoint string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var result service.ActionResult
		if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, endpoint), nil, &result); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("✗ %s refused: %v", endpoint, err)), nil
		}

		return mcp.NewToolResultText(c.formatActionResult(&result)), nil
	}
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, c.formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		query.Set("order", order)
	}

	path := sessionPath(sessionID, "log")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var log service.LogResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &log); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLog(&log)), nil
}

func (c *Client) handleDescribeSpace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.GetArguments()
	if _, ok := args["space_id"]; !ok {
		return mcp.NewToolResultError("required argument \"space_id\" not found"), nil
	}
	spaceID := request.GetInt("space_id", -1)

	var info service.SpaceInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "spaces", fmt.Sprint(spaceID)), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSpaceInfo(&info)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (config_id: %s)\n  %s\n  Players: %d, Starting cash: $%d\n\n",
			config.Name, config.ConfigID, config.Description, config.Players, config.StartingCash)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Monopolio Paisa - Complete Instructions

GAME OBJECTIVE:
Be the last player with money. Players who cannot cover a rent or tax go
bankrupt and leave the game; when one player remains, they win.

THE BOARD:
- 40 spaces around Medellín, numbered 0-39 starting at GO (0)
- Barrios (properties) grouped by color, 4 transit lines, 2 EPM utilities
- Tax spaces (DIAN, Impuesto de Lujo); Suerte, Arca Comunitaria and the corners have no effect
- Use describe_space to inspect any space

TURN STRUCTURE:
1. roll_dice: two six-sided dice move the current player clockwise
2. Passing or landing on GO pays $%d
3. Settle the landing:
   - Unowned space with a price: buy_property or decline_purchase
   - Space owned by another player: pay_rent
   - Tax space: pay_tax
4. end_turn: hands the turn to the next active player
Doubles let the same player roll again after settling the landing.

RENT:
- Barrios charge the first tier of their rent table
- Transit lines charge by how many lines the owner holds
- Utilities charge a fixed amount
- Bankrupt owners collect nothing

BANKRUPTCY:
- Paying more than you have takes all your cash and eliminates you
- Your spaces return to the bank
- You may still end your turn once eliminated

RULE VIOLATIONS (refused with an error):
- Acting out of turn or rolling twice
- Ending the turn with a pending purchase, rent or tax
- Buying without enough cash (the offer stays open; decline it)
- Any action after the game has ended

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- list_configs shows the available setups; pass config_id to create_session
- game_log pages through everything that happened

Buena suerte, parcero!`, engine.StartBonus)

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func (c *Client) spaceName(id int) string {
	if s, ok := c.board.Get(id); ok {
		return s.Name
	}
	return fmt.Sprintf("space %d", id)
}

func (c *Client) formatSessionInfo(session *service.SessionInfo) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Session: %s\nConfig: %s\nCreated: %s\n\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(session.Standings) > 0 {
		result.WriteString("Standings:\n")
		for i, s := range session.Standings {
			status := ""
			if s.Eliminated {
				status = " (bankrupt)"
			}
			fmt.Fprintf(&result, "%d. %s: net worth $%d, cash $%d, %d properties%s\n",
				i+1, s.Name, s.NetWorth, s.Cash, s.Properties, status)
		}
		result.WriteString("\n")
	}

	result.WriteString(c.formatGameState(session.GameState))
	return result.String()
}

func (c *Client) formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Turn %d", state.TurnNumber)
	if p, ok := state.Player(state.CurrentPlayer); ok {
		fmt.Fprintf(&result, " | Current player: %s (#%d)", p.Name, p.ID)
	}
	if state.LastRoll != nil {
		fmt.Fprintf(&result, " | Last roll: %d+%d=%d", state.LastRoll[0], state.LastRoll[1], state.LastRoll.Total())
	}
	result.WriteString("\n\nPlayers:\n")

	for _, p := range state.Players {
		marker := " "
		if p.ID == state.CurrentPlayer {
			marker = "▶"
		}
		fmt.Fprintf(&result, "%s #%d %s: $%d at %d %s, %d properties",
			marker, p.ID, p.Name, p.Cash, p.Position, c.spaceName(p.Position),
			len(engine.PropertiesOf(p.ID, state.Ownerships)))
		if p.Eliminated {
			result.WriteString(" (bankrupt)")
		}
		result.WriteString("\n")
	}

	switch {
	case state.PendingPurchase != nil:
		s, _ := c.board.Get(*state.PendingPurchase)
		fmt.Fprintf(&result, "\nPending: buy %s for $%d? (buy_property / decline_purchase)\n", s.Name, s.Price)
	case state.PendingRent != nil:
		owner, _ := state.Player(state.PendingRent.OwnerID)
		fmt.Fprintf(&result, "\nPending: pay $%d rent to %s for %s (pay_rent)\n",
			state.PendingRent.Amount, owner.Name, c.spaceName(state.PendingRent.PropertyID))
	case state.PendingTax != nil:
		fmt.Fprintf(&result, "\nPending: pay $%d tax for %s (pay_tax)\n",
			state.PendingTax.Amount, c.spaceName(state.PendingTax.SpaceID))
	case !state.GameEnded && !state.HasRolled:
		result.WriteString("\nNext: roll_dice\n")
	case !state.GameEnded:
		result.WriteString("\nNext: end_turn\n")
	}

	if state.GameEnded {
		if state.Winner != nil {
			if w, ok := state.Player(*state.Winner); ok {
				fmt.Fprintf(&result, "\n🏆 GAME OVER - %s wins!", w.Name)
			}
		} else {
			result.WriteString("\n🏁 GAME OVER")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func (c *Client) formatActionResult(result *service.ActionResult) string {
	var out strings.Builder

	if result.Success {
		fmt.Fprintf(&out, "✓ %s", result.Action)
	} else {
		fmt.Fprintf(&out, "✗ %s", result.Action)
	}
	if result.Message != "" {
		fmt.Fprintf(&out, ": %s", result.Message)
	}
	out.WriteString("\n")

	if result.Roll != nil {
		fmt.Fprintf(&out, "Dice: %d + %d = %d\n", result.Roll[0], result.Roll[1], result.Roll.Total())
	}
	if result.Player != nil {
		fmt.Fprintf(&out, "%s now has $%d", result.Player.Name, result.Player.Cash)
		if result.Space != nil {
			fmt.Fprintf(&out, " and stands on %d %s", result.Space.ID, result.Space.Name)
		}
		out.WriteString("\n")
	}

	if len(result.Events) > 0 {
		out.WriteString("\nEvents:\n")
		for _, e := range result.Events {
			fmt.Fprintf(&out, "- %s\n", e.Message)
		}
	}

	out.WriteString("\n")
	out.WriteString(c.formatGameState(result.GameState))
	return out.String()
}

func formatLog(log *service.LogResponse) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Game Log (page %d/%d, %d entries total):\n\n",
		log.Page, log.TotalPages, log.Total)

	for _, e := range log.Entries {
		fmt.Fprintf(&result, "%4d. %s\n", e.Index+1, e.Message)
	}

	if log.HasPrevious || log.HasNext {
		result.WriteString("\n")
		if log.HasPrevious {
			fmt.Fprintf(&result, "Previous page: %d  ", log.Page-1)
		}
		if log.HasNext {
			fmt.Fprintf(&result, "Next page: %d", log.Page+1)
		}
		result.WriteString("\n")
	}

	return result.String()
}

func formatSpaceInfo(info *service.SpaceInfo) string {
	var result strings.Builder
	s := info.Space

	fmt.Fprintf(&result, "Space %d: %s\nType: %s\n", s.ID, s.Name, s.Type)
	if s.Color != "" {
		fmt.Fprintf(&result, "Color group: %s\n", s.Color)
	}
	if s.Price > 0 {
		fmt.Fprintf(&result, "Price: $%d\n", s.Price)
	}
	if s.TaxAmount > 0 {
		fmt.Fprintf(&result, "Tax: $%d\n", s.TaxAmount)
	}

	switch {
	case info.Owner != nil:
		fmt.Fprintf(&result, "Owner: %s (#%d)\nRent due on landing: $%d\n", info.Owner.Name, info.Owner.ID, info.Rent)
	case info.Buyable:
		result.WriteString("Owner: none (available to buy)\n")
		if info.Rent > 0 {
			fmt.Fprintf(&result, "Base rent: $%d\n", info.Rent)
		}
	case s.Purchasable():
		result.WriteString("Owner: none\n")
	}

	if len(info.Occupants) == 0 {
		result.WriteString("Occupants: none\n")
	} else {
		names := make([]string, 0, len(info.Occupants))
		for _, p := range info.Occupants {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&result, "Occupants: %s\n", strings.Join(names, ", "))
	}

	return result.String()
}
