package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/AlekSi/pointer"
	"github.com/labstack/echo/v4"

	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/logger"
)

const defaultListLimit = 50

type applicationApi struct {
	store    ApplicationStore
	notifier Notifier
	log      logger.Logger
}

func registerApplicationAPI(g *echo.Group, store ApplicationStore, notifier Notifier, log logger.Logger) {
	api := applicationApi{store: store, notifier: notifier, log: log}

	ag := g.Group("/applications")
	ag.GET("", api.applicationQuery)
	ag.GET("/:id", api.applicationRetrieve)
	ag.POST("/:id/decision", api.applicationDecide)
	ag.GET("/:id/documents/:docID", api.documentDownload)
}

type listQuery struct {
	Status string `json:"status" query:"status" validate:"omitempty,oneof=pending approved rejected needs_revision"`
	Limit  int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=500"`
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected needs_revision"`
	Reason   string `json:"reason" validate:"max=1000"`
}

// Handlers

func (api *applicationApi) applicationQuery(ctx echo.Context) error {
	q := new(listQuery)
	if err := ctx.Bind(q); err != nil {
		return err
	}
	if err := ctx.Validate(q); err != nil {
		return err
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}

	apps, err := api.store.ListByStatus(q.Status, q.Limit)
	if err != nil {
		return err
	}
	if apps == nil {
		apps = []db.Application{}
	}

	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) applicationRetrieve(ctx echo.Context) error {
	app, err := api.loadApplication(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) applicationDecide(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	data := new(decisionRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := ctx.Validate(data); err != nil {
		return err
	}

	var reason *string
	if data.Decision != db.StatusApproved {
		reason = pointer.ToString(data.Reason)
	}
	if err := api.store.UpdateStatus(id, data.Decision, reason); err != nil {
		return err
	}

	app, err := api.loadApplication(ctx)
	if err != nil {
		return err
	}

	if api.notifier != nil {
		if err := api.notifier.Notify(app.TelegramUserID, data.Decision, data.Reason); err != nil {
			api.log.Warn("decision stored but applicant not notified", err,
				map[string]interface{}{"application_id": app.ID},
				logger.Person{ChatID: app.TelegramUserID})
		}
	}

	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) documentDownload(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	docID, err := pathID(ctx, "docID")
	if err != nil {
		return err
	}

	doc, err := api.store.GetDocument(id, docID)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%d_%d_%s%s", id, doc.Position+1, doc.Kind, filepath.Ext(doc.FilePath))
	return ctx.Attachment(doc.FilePath, name)
}

// loadApplication returns the application named by the :id param with its documents.
func (api *applicationApi) loadApplication(ctx echo.Context) (*db.Application, error) {
	id, err := pathID(ctx, "id")
	if err != nil {
		return nil, err
	}

	app, err := api.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	docs, err := api.store.ListDocuments(id)
	if err != nil {
		return nil, err
	}
	app.Documents = docs

	return app, nil
}

func pathID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
