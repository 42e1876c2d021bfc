package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const homeTemplate = "assets/web/index.gohtml"

type (
	feature struct {
		Name        string
		Description string
		Color       string
	}

	homePage struct {
		AppName  string
		Title    string
		Tagline  string
		Features []feature
	}
)

var features = []feature{
	{Name: "Multi-Role Support", Description: "Teachers, Students, Parents, Principal & Finance", Color: "blue"},
	{Name: "Complete Management", Description: "Attendance, Results, Meetings & Finance", Color: "green"},
	{Name: "Real-time Updates", Description: "Live notifications & meeting support", Color: "purple"},
}

func (s *server) renderHome(ctx echo.Context) error {
	var buf bytes.Buffer
	err := s.home.Execute(&buf, homePage{
		AppName:  s.deps.Conf.AppName,
		Title:    "Welcome to School Management System",
		Tagline:  "A comprehensive SaaS solution for ICSE & CBSE schools",
		Features: features,
	})
	if err != nil {
		return errors.Wrap(err, "rendering home page")
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}
