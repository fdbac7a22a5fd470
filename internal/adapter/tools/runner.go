package tools

import (
	"context"
	"fmt"

	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/usecase"
)

// Runner implements usecase.ToolRunner by routing each priced operation
// to its provider client. It only ever runs after the funds check has
// passed; any error here means the action did not happen and must not be
// charged.
type Runner struct {
	search *TavilyClient
	voice  *VapiClient
	vision *MenuVisionClient
	orders *OrderPlacer
}

// NewRunner creates a new Runner.
func NewRunner(search *TavilyClient, voice *VapiClient, vision *MenuVisionClient, orders *OrderPlacer) *Runner {
	return &Runner{
		search: search,
		voice:  voice,
		vision: vision,
		orders: orders,
	}
}

// Run executes the external side effect for op.
func (r *Runner) Run(ctx context.Context, op usecase.Operation, params usecase.ChargeParams) (map[string]any, error) {
	switch op {
	case usecase.OpWebSearch:
		hits, err := r.search.Search(ctx, params.Query)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"query":   params.Query,
			"results": hits,
		}, nil

	case usecase.OpPhoneCall:
		call, err := r.voice.Call(ctx, params.PhoneNumber, params.Purpose, params.BusinessName)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"callId":       call.CallID,
			"status":       call.Status,
			"phoneNumber":  call.PhoneNumber,
			"businessName": call.BusinessName,
			"purpose":      call.Purpose,
		}
		if call.DemoMode {
			payload["demoMode"] = true
		}
		return payload, nil

	case usecase.OpMenuVision:
		analysis, err := r.vision.AnalyzeMenu(ctx, params.ImageURL)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"imageUrl":  params.ImageURL,
			"items":     analysis.Items,
			"itemCount": analysis.ItemCount,
			"rawText":   analysis.RawText,
		}, nil

	case usecase.OpPlaceOrder:
		return r.orders.PlaceOrder(ctx, params)

	case usecase.OpGroceryOrder:
		return r.orders.PlaceGroceryOrder(ctx, params)

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOperation, op)
	}
}
