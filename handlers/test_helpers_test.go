package handlers

import (
	"net/http"
	"net/http/httptest"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costsheet/services"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// testProject builds a small valid project tree for handler tests.
func testProject() *services.Project {
	return &services.Project{
		Name:     "Riverside Hotel",
		Number:   "P1023",
		Customer: "Acme Catering Ltd",
		Date:     "14/03/2026",
		Levels: []services.Level{
			{
				Name: "Ground Floor",
				Areas: []services.Area{
					{
						Name: "Main Kitchen",
						Items: []services.Item{
							{
								Ref:       "1.01",
								Model:     "KVF",
								Kind:      services.KindCanopy,
								BasePrice: 2500,
								Options: services.ItemOptions{
									FireSuppression:      true,
									FireSuppressionPrice: 1690,
								},
							},
						},
						SharedCosts: []services.CostPool{
							{Kind: services.PoolDelivery, Scope: services.KindCanopy, Amount: 600},
						},
					},
				},
			},
		},
	}
}
