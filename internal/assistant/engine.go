package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shoplite/shoplite/api/internal/assistant/citations"
	"github.com/shoplite/shoplite/api/internal/assistant/intent"
	"github.com/shoplite/shoplite/api/internal/assistant/knowledge"
	"github.com/shoplite/shoplite/api/internal/assistant/prompt"
	"github.com/shoplite/shoplite/api/internal/assistant/registry"
	"github.com/shoplite/shoplite/api/internal/store"
	"github.com/shoplite/shoplite/api/pkg/models"
)

// historyWindow bounds how many stored turns feed the prompt (3 user + 3
// assistant exchanges).
const historyWindow = 6

// Response-length budgets by intent weight. Low-content intents (greetings,
// counts, refusals) get the small budget; intents likely to need
// elaboration (orders, search results, policy answers) get the large one.
const (
	maxTokensSmall = 150
	maxTokensLarge = 350
)

// User-facing degradation text, one literal per failure class so callers
// and tests can tell them apart.
const (
	apologyTimeout   = "I'm sorry, that took longer than expected and my response timed out. Please try again in a moment."
	apologyTransport = "I'm sorry, I'm having trouble reaching my answer service due to a network error. Please try again shortly."
	apologyStatus    = "I'm sorry, my answer service returned an unexpected response. Please try again shortly."
	apologyEmpty     = "I'm sorry, I'm having trouble thinking of a response right now."
)

// Context literals for the gate and failure branches. These are grounded
// statements for the generator to paraphrase, not user-facing text.
const (
	contextNeedLogin = "The user needs to be logged in for this request. Ask them to log in with their account email so you can look up their information."
	contextFetchFail = "There was a problem retrieving the resources needed for this request. Apologize briefly and suggest the user try again shortly."
	contextDefault   = "No specific information was found for this query."
)

// Request is one inbound assistant query. Query and SessionID are
// validated non-empty by the transport layer before Ask runs.
type Request struct {
	Query     string
	UserEmail string
	SessionID string
}

// Engine binds the classifier, registry, knowledge base, composer, and
// generator into the per-request pipeline. All configuration is injected
// at construction; the engine itself is stateless between requests apart
// from the append-only turn log it writes through the store.
type Engine struct {
	store     store.Store
	registry  *registry.Registry
	kb        *knowledge.Base
	composer  *prompt.Composer
	generator Generator
}

// NewEngine assembles the pipeline.
func NewEngine(st store.Store, reg *registry.Registry, kb *knowledge.Base, composer *prompt.Composer, gen Generator) *Engine {
	return &Engine{store: st, registry: reg, kb: kb, composer: composer, generator: gen}
}

// Ask runs the full pipeline for one query and always returns a structured
// result. Failures along the way degrade to apologetic text; they never
// surface as errors to the caller.
func (e *Engine) Ask(ctx context.Context, req Request) models.AssistantResult {
	started := time.Now()

	// Turn persistence is best-effort: the conversation can proceed
	// statelessly for this turn if the log write fails.
	userTurnID := uuid.NewString()
	if err := e.store.AppendTurn(ctx, &models.Turn{
		ID:        userTurnID,
		SessionID: req.SessionID,
		Role:      models.RoleUser,
		Content:   req.Query,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to persist user turn")
	}

	history, err := e.store.RecentTurns(ctx, req.SessionID, historyWindow)
	if err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to load history")
		history = nil
	}
	// The query just written is passed to the composer explicitly, not via
	// the stored log.
	history = dropTurn(history, userTurnID)

	cls := intent.Classify(req.Query)

	gathered := e.gatherContext(ctx, cls, req)

	composed := e.composer.Compose(cls.Intent, gathered.context, req.Query, history)

	text := e.generate(ctx, cls.Intent, composed)

	report, cleaned := citations.Validate(text, gathered.expectedIDs, cls.Intent)
	if !report.IsValid {
		log.Warn().
			Str("session_id", req.SessionID).
			Strs("invalid", report.Invalid).
			Msg("stripped hallucinated citations")
	}

	if err := e.store.AppendTurn(ctx, &models.Turn{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Role:      models.RoleAssistant,
		Content:   cleaned,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to persist assistant turn")
	}

	if err := e.store.AppendAssistantLog(ctx, &models.AssistantLog{
		ID:               uuid.NewString(),
		SessionID:        req.SessionID,
		Intent:           cls.Intent,
		FunctionsCalled:  gathered.calls,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		CreatedAt:        time.Now().UTC(),
	}); err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to persist assistant log")
	}

	return models.AssistantResult{
		Text:            cleaned,
		Intent:          cls.Intent,
		FunctionsCalled: gathered.calls,
		Citations:       report,
	}
}

// gathered is the outcome of the context-gathering stage.
type gathered struct {
	context     string
	calls       []models.FunctionCall
	expectedIDs []string
}

// needsIdentity lists the intents that require a known caller when the
// query carries no explicit order identifier.
func needsIdentity(cls intent.Classification) bool {
	switch cls.Intent {
	case models.IntentOrderStatus:
		return cls.OrderID == ""
	case models.IntentOrderCount, models.IntentTotalSpendings,
		models.IntentLastOrder, models.IntentAccountDetails:
		return true
	}
	return false
}

// gatherContext dispatches on the classified intent and renders a
// natural-language context string for the generator. Every registry call
// made is recorded so the caller sees the audit trail.
func (e *Engine) gatherContext(ctx context.Context, cls intent.Classification, req Request) gathered {
	g := gathered{context: contextDefault, calls: []models.FunctionCall{}}

	if needsIdentity(cls) && req.UserEmail == "" {
		g.context = contextNeedLogin
		return g
	}

	switch cls.Intent {
	case models.IntentOrderStatus:
		if cls.OrderID != "" {
			result := e.call(ctx, &g, "getOrderStatus", map[string]any{"orderId": cls.OrderID})
			if result.failed {
				break
			}
			if result.empty {
				g.context = "The user provided an order ID, but no matching order was found."
			} else {
				g.context = fmt.Sprintf("The user is asking about order %s. Here is the order data: %s", cls.OrderID, result.rendered)
			}
		} else {
			result := e.call(ctx, &g, "getCustomerOrders", map[string]any{"email": req.UserEmail})
			if result.failed {
				break
			}
			if result.empty {
				g.context = "The user asked for their orders, but no orders were found for this account."
			} else {
				g.context = "The user is asking about their orders. Here is their order history: " + result.rendered
			}
		}

	case models.IntentOrderCount:
		result := e.call(ctx, &g, "countCustomerOrders", map[string]any{"email": req.UserEmail})
		if !result.failed {
			g.context = "The user asked how many orders they have placed. The count is: " + result.rendered
		}

	case models.IntentProductSearch:
		term := cls.SearchTerm
		if term == "" {
			term = req.Query
		}
		result := e.call(ctx, &g, "searchProducts", map[string]any{"query": term})
		if result.failed {
			break
		}
		if result.empty {
			g.context = "The user searched for a product, but no results were found."
		} else {
			g.context = "The user searched for products. Here are the top results: " + result.rendered
		}

	case models.IntentProductCount:
		result := e.call(ctx, &g, "countAllProducts", nil)
		if !result.failed {
			g.context = "The user asked how many products the store carries. The total is: " + result.rendered
		}

	case models.IntentTotalSpendings:
		result := e.call(ctx, &g, "getTotalSpendings", map[string]any{"email": req.UserEmail})
		if !result.failed {
			g.context = "The user asked how much they have spent. Here is the aggregate: " + result.rendered
		}

	case models.IntentLastOrder:
		result := e.call(ctx, &g, "getLastOrder", map[string]any{"email": req.UserEmail})
		if result.failed {
			break
		}
		if result.empty {
			g.context = "The user asked about their most recent order, but no orders were found for this account."
		} else {
			g.context = "The user is asking about their most recent order. Here it is: " + result.rendered
		}

	case models.IntentAccountDetails:
		result := e.call(ctx, &g, "getAccountDetails", map[string]any{"email": req.UserEmail})
		if result.failed {
			break
		}
		if result.empty {
			g.context = "No account was found for the user's email. Suggest they check the address they logged in with."
		} else {
			g.context = "The user asked about their account. Here are their details: " + result.rendered
		}

	case models.IntentPolicyQuestion:
		docs := e.kb.FindRelevant(req.Query)
		if len(docs) == 0 {
			g.context = "I couldn't find a specific policy related to that question. Politely inform the user and suggest they ask in a different way."
			break
		}
		lines := "The user is asking a policy question. Answer based on the following document(s), citing the bracketed IDs:\n"
		for _, d := range docs {
			lines += fmt.Sprintf("[%s] %s\n", d.ID, d.Answer)
			g.expectedIDs = append(g.expectedIDs, d.ID)
		}
		g.context = lines

	case models.IntentComplaint:
		g.context = "The user is expressing a complaint. Acknowledge their frustration with empathy ('I'm very sorry to hear that...') and ask for more specific details so you can help."

	case models.IntentChitchat:
		g.context = "The user is making small talk. Respond with a brief, friendly greeting and gently guide the conversation back to a support topic (e.g., 'How can I help you with Shoplite today?')."

	case models.IntentOffTopic, models.IntentViolation:
		g.context = "The user's query is off-topic or inappropriate. Politely state that you can only assist with Shoplite-related questions and cannot answer this request."
	}

	return g
}

// callResult captures one registry invocation for the gathering branches.
type callResult struct {
	failed   bool
	empty    bool
	rendered string
}

// call executes one registry function, records the audit entry, and
// renders the result as JSON for insertion into the context. A registry
// failure degrades the shared context and is reported via failed.
func (e *Engine) call(ctx context.Context, g *gathered, name string, params map[string]any) callResult {
	if params == nil {
		params = map[string]any{}
	}
	g.calls = append(g.calls, models.FunctionCall{Name: name, Params: params})

	result, err := e.registry.Execute(ctx, name, params)
	if err != nil {
		log.Error().Err(err).Str("function", name).Msg("registry call failed")
		g.context = contextFetchFail
		return callResult{failed: true}
	}
	if isEmptyResult(result) {
		return callResult{empty: true}
	}
	rendered, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Error().Err(err).Str("function", name).Msg("failed to render result")
		g.context = contextFetchFail
		return callResult{failed: true}
	}
	return callResult{rendered: string(rendered)}
}

func isEmptyResult(result any) bool {
	if result == nil {
		return true
	}
	switch v := result.(type) {
	case []models.Order:
		return len(v) == 0
	case []models.Product:
		return len(v) == 0
	case *models.Order:
		return v == nil
	case *models.Customer:
		return v == nil
	}
	return false
}

// generate calls the backend with the intent-appropriate token budget and
// maps each failure variant to its own apology.
func (e *Engine) generate(ctx context.Context, it models.Intent, composed string) string {
	text, err := e.generator.Generate(ctx, composed, budgetFor(it))
	if err == nil {
		return text
	}

	var genErr *GenerateError
	if errors.As(err, &genErr) {
		log.Error().Err(err).Str("kind", string(genErr.Kind)).Msg("generation failed")
		switch genErr.Kind {
		case FailTimeout:
			return apologyTimeout
		case FailTransport:
			return apologyTransport
		case FailStatus:
			return apologyStatus
		}
		return apologyEmpty
	}
	log.Error().Err(err).Msg("generation failed")
	return apologyEmpty
}

func budgetFor(it models.Intent) int {
	switch it {
	case models.IntentChitchat, models.IntentComplaint, models.IntentOffTopic,
		models.IntentViolation, models.IntentProductCount, models.IntentOrderCount:
		return maxTokensSmall
	}
	return maxTokensLarge
}

func dropTurn(history []models.Turn, id string) []models.Turn {
	out := history[:0]
	for _, t := range history {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
