package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

type documentsRequest struct {
	Answers survey.Answers `json:"answers"`
}

type documentsResponse struct {
	Complete  bool              `json:"complete"`
	Documents []survey.Document `json:"documents"`
}

func registerSurveyAPI(g *echo.Group) {
	g.POST("/survey/documents", surveyDocuments)
}

// surveyDocuments resolves the required document list for answers sent by
// a web client. Nothing is stored.
func surveyDocuments(ctx echo.Context) error {
	data := new(documentsRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	docs := survey.Documents(data.Answers)
	if docs == nil {
		docs = []survey.Document{}
	}

	return ctx.JSON(http.StatusOK, documentsResponse{
		Complete:  data.Answers.Complete(),
		Documents: docs,
	})
}
