package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/monopolio-paisa/api"
	"github.com/wricardo/monopolio-paisa/game/board"
	"github.com/wricardo/monopolio-paisa/game/config"
	"github.com/wricardo/monopolio-paisa/game/engine"
	"github.com/wricardo/monopolio-paisa/game/service"
	"github.com/wricardo/monopolio-paisa/game/session"
)

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	if len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func intPtr(v int) *int { return &v }

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
	if client.board == nil || client.logger == nil {
		t.Error("Expected board and logger defaults")
	}
}

func TestClient_ToolsRegistered(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	client.GetMCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`))
	response := client.GetMCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("Failed to marshal tools/list response: %v", err)
	}

	tools := []string{
		"create_session", "list_sessions", "get_session", "game_state",
		"roll_dice", "buy_property", "decline_purchase", "pay_rent", "pay_tax",
		"end_turn", "reset_game", "game_log", "describe_space", "list_configs",
		"game_instructions",
	}
	for _, name := range tools {
		if !strings.Contains(string(data), `"name":"`+name+`"`) {
			t.Errorf("Tool %s not registered", name)
		}
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]string
	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", response["status"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, WithHTTPClient(&http.Client{Timeout: time.Second}))

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/api", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}
	if !strings.Contains(err.Error(), "API error: 500") {
		t.Errorf("Expected 'API error: 500' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "roll: dice already rolled this turn"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "POST", "/api/sessions/abcd/roll", nil, nil)
	if err == nil || err.Error() != "roll: dice already rolled this turn" {
		t.Errorf("Expected the API error message, got %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "duelo" {
			t.Errorf("Expected config_id duelo, got %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "Duelo",
			GameState:  engine.InitGameStateFromConfig(nil),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]any{"config_id": "duelo"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "test-session-123") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if !strings.Contains(text, "Next: roll_dice") {
		t.Errorf("Expected a fresh game to suggest rolling, got: %s", text)
	}
}

func TestClient_actionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/abcd/end-turn" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "end_turn: a purchase, rent or tax is still pending"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.actionHandler("end-turn")(context.Background(), callTool("end_turn", map[string]any{"session_id": "abcd"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected a tool error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "still pending") {
		t.Errorf("Expected the refusal reason, got: %s", text)
	}
}

func TestClient_missingArguments(t *testing.T) {
	client := NewClient("http://localhost:1")
	ctx := context.Background()

	result, _ := client.handleGameState(ctx, callTool("game_state", map[string]any{}))
	if !result.IsError {
		t.Error("Expected an error without session_id")
	}

	result, _ = client.handleDescribeSpace(ctx, callTool("describe_space", map[string]any{"session_id": "abcd"}))
	if !result.IsError {
		t.Error("Expected an error without space_id")
	}
}

func TestFormatGameState(t *testing.T) {
	client := NewClient("http://localhost:8080")

	state := engine.InitGameStateFromConfig(nil)
	state.TurnNumber = 3
	state.LastRoll = &engine.DiceRoll{2, 3}
	state.HasRolled = true
	state.Players[0].Position = 5
	state.Ownerships = []engine.Ownership{{PropertyID: 5, OwnerID: 2}}
	state.PendingRent = &engine.PendingRent{PropertyID: 5, OwnerID: 2, Amount: 25000}

	result := client.formatGameState(state)

	expected := []string{
		"Turn 3",
		"Current player: Andres (#1)",
		"Last roll: 2+3=5",
		"▶ #1 Andres: $1500000 at 5 Metro Línea A",
		"#2 El Brayan: $1500000 at 0 GO, 1 properties",
		"Pending: pay $25000 rent to El Brayan for Metro Línea A (pay_rent)",
	}
	for _, want := range expected {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in result, got:\n%s", want, result)
		}
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	client := NewClient("http://localhost:8080")

	state := engine.InitGameStateFromConfig(nil)
	state.GameEnded = true
	state.Winner = intPtr(2)
	state.Players[0].Eliminated = true

	result := client.formatGameState(state)

	if !strings.Contains(result, "GAME OVER - El Brayan wins!") {
		t.Errorf("Expected winner line, got:\n%s", result)
	}
	if !strings.Contains(result, "Andres: $1500000 at 0 GO, 0 properties (bankrupt)") {
		t.Errorf("Expected bankrupt marker, got:\n%s", result)
	}
	if strings.Contains(result, "Next:") {
		t.Errorf("A finished game should not suggest a next action, got:\n%s", result)
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	client := NewClient("http://localhost:8080")
	if got := client.formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected output for nil state: %s", got)
	}
}

func TestFormatActionResult(t *testing.T) {
	client := NewClient("http://localhost:8080")

	state := engine.InitGameStateFromConfig(nil)
	state.PendingPurchase = intPtr(3)
	player := state.Players[0]
	player.Position = 3
	space, _ := board.Default().Get(3)

	result := client.formatActionResult(&service.ActionResult{
		Action:    "roll",
		Success:   true,
		GameState: state,
		Roll:      &engine.DiceRoll{1, 2},
		Player:    &player,
		Space:     &space,
		Events: []service.GameEvent{
			{Type: "roll", Message: "Andres sacó 1 y 2 (3)"},
			{Type: "roll", Message: "Andres cayó en Barrio Manrique"},
		},
	})

	expected := []string{
		"✓ roll",
		"Dice: 1 + 2 = 3",
		"Andres now has $1500000 and stands on 3 Barrio Manrique",
		"- Andres cayó en Barrio Manrique",
		"Pending: buy Barrio Manrique for $60000? (buy_property / decline_purchase)",
	}
	for _, want := range expected {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in result, got:\n%s", want, result)
		}
	}
}

func TestFormatLog(t *testing.T) {
	result := formatLog(&service.LogResponse{
		Entries: []service.LogEntry{
			{Index: 4, Message: "Turno de El Brayan"},
			{Index: 3, Message: "Andres no compró Barrio Manrique"},
		},
		Total:       5,
		Page:        2,
		PageSize:    2,
		TotalPages:  3,
		HasNext:     true,
		HasPrevious: true,
	})

	expected := []string{
		"Game Log (page 2/3, 5 entries total)",
		"   5. Turno de El Brayan",
		"   4. Andres no compró Barrio Manrique",
		"Previous page: 1",
		"Next page: 3",
	}
	for _, want := range expected {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in result, got:\n%s", want, result)
		}
	}
}

func TestFormatSpaceInfo(t *testing.T) {
	space, _ := board.Default().Get(4)
	result := formatSpaceInfo(&service.SpaceInfo{Space: space})

	for _, want := range []string{"Space 4: Impuesto de Renta DIAN", "Type: tax", "Tax: $200000", "Occupants: none"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in result, got:\n%s", want, result)
		}
	}
	if strings.Contains(result, "Owner:") {
		t.Errorf("Tax spaces have no owner line, got:\n%s", result)
	}
}

func TestFormatSpaceInfo_Unowned(t *testing.T) {
	space, _ := board.Default().Get(1)
	result := formatSpaceInfo(&service.SpaceInfo{Space: space, Rent: 2000, Buyable: true})

	for _, want := range []string{"Space 1: ", "Owner: none (available to buy)", "Base rent: $2000"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in result, got:\n%s", want, result)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", map[string]any{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Monopolio Paisa - Complete Instructions",
		"GAME OBJECTIVE:",
		"THE BOARD:",
		"TURN STRUCTURE:",
		"Passing or landing on GO pays $200000",
		"RENT:",
		"BANKRUPTCY:",
		"RULE VIOLATIONS",
		"SESSION MANAGEMENT:",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

// scriptedDice returns the queued faces in order
type scriptedDice struct {
	faces []int
}

func (s *scriptedDice) IntN(n int) int {
	f := s.faces[0]
	s.faces = s.faces[1:]
	return f - 1
}

func TestClient_Integration(t *testing.T) {
	logger := zaptest.NewLogger(t)

	configs, err := config.NewManager(t.TempDir(), config.WithLogger(logger))
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	if err := configs.SaveConfig(config.DefaultConfigName, engine.DefaultConfig()); err != nil {
		t.Fatalf("Failed to save default config: %v", err)
	}
	sessions := session.NewManager(session.WithLogger(logger))
	svc := service.NewGameService(sessions, configs, service.WithLogger(logger))

	apiServer := httptest.NewServer(api.NewServer(svc, nil, api.WithLogger(logger), api.WithStaticDir("")))
	defer apiServer.Close()

	client := NewClient(apiServer.URL, WithLogger(logger))
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "medellin")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	sess, err := sessions.Get(info.ID)
	if err != nil {
		t.Fatalf("Session not found: %v", err)
	}
	sess.Engine.SetDice(&scriptedDice{faces: []int{1, 2}})

	args := map[string]any{"session_id": info.ID}

	result, _ := client.actionHandler("roll")(ctx, callTool("roll_dice", args))
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("roll_dice failed: %s", text)
	}
	if !strings.Contains(text, "Dice: 1 + 2 = 3") || !strings.Contains(text, "Pending: buy Barrio Manrique") {
		t.Errorf("Unexpected roll output:\n%s", text)
	}

	result, _ = client.actionHandler("end-turn")(ctx, callTool("end_turn", args))
	if !result.IsError {
		t.Error("Ending the turn with a pending purchase should be refused")
	}

	result, _ = client.actionHandler("buy")(ctx, callTool("buy_property", args))
	if text := resultText(t, result); result.IsError || !strings.Contains(text, "Andres now has $1440000") {
		t.Errorf("Unexpected buy output:\n%s", text)
	}

	result, _ = client.handleDescribeSpace(ctx, callTool("describe_space", map[string]any{"session_id": info.ID, "space_id": 3}))
	text = resultText(t, result)
	for _, want := range []string{"Owner: Andres (#1)", "Rent due on landing: $4000", "Occupants: Andres"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in describe_space output:\n%s", want, text)
		}
	}

	result, _ = client.actionHandler("end-turn")(ctx, callTool("end_turn", args))
	if text := resultText(t, result); result.IsError || !strings.Contains(text, "Current player: El Brayan (#2)") {
		t.Errorf("Unexpected end_turn output:\n%s", text)
	}

	result, _ = client.handleGameLog(ctx, callTool("game_log", map[string]any{"session_id": info.ID, "order": "asc", "limit": 2}))
	if text := resultText(t, result); !strings.Contains(text, "page 1/") || !strings.Contains(text, "Next page: 2") {
		t.Errorf("Unexpected game_log output:\n%s", text)
	}

	result, _ = client.handleGetSession(ctx, callTool("get_session", args))
	if text := resultText(t, result); !strings.Contains(text, "1. Andres: net worth $1500000") {
		t.Errorf("Expected standings in get_session output:\n%s", text)
	}

	result, _ = client.handleListConfigs(ctx, callTool("list_configs", nil))
	if text := resultText(t, result); !strings.Contains(text, "config_id: medellin") {
		t.Errorf("Expected medellin config, got:\n%s", text)
	}

	result, _ = client.handleReset(ctx, callTool("reset_game", args))
	if text := resultText(t, result); result.IsError || !strings.Contains(text, "Turn ") {
		t.Errorf("Unexpected reset output:\n%s", text)
	}

	result, _ = client.handleGameState(ctx, callTool("game_state", map[string]any{"session_id": "zzzz"}))
	if !result.IsError {
		t.Error("Unknown sessions should produce a tool error")
	}
}
