package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Coordinates stay strings so that "abc" and "" reach the domain parser and
// are reported as invalid coordinates rather than malformed JSON.
type originRequest struct {
	Lat string `json:"lat" validate:"max=64"`
	Lon string `json:"lon" validate:"max=64"`
}

type geolocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error" validate:"max=500"`
}

type placeRequest struct {
	DisplayName string `json:"display_name" validate:"max=500"`
	Lat         string `json:"lat" validate:"max=64"`
	Lon         string `json:"lon" validate:"max=64"`
}

type radiusRequest struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit" validate:"max=16"`
}

type unitRequest struct {
	Unit string `json:"unit" validate:"required,max=16"`
}

type sampleRequest struct {
	Seed *uint64 `json:"seed"`
}

type dmsRequest struct {
	Degrees    int     `json:"degrees" validate:"gte=0,lte=180"`
	Minutes    int     `json:"minutes" validate:"gte=0,lt=60"`
	Seconds    float64 `json:"seconds" validate:"gte=0,lt=60"`
	Hemisphere string  `json:"hemisphere" validate:"required,oneof=N S E W n s e w"`
}

type placeSearchQuery struct {
	Query  string `validate:"required,max=200"`
	Limit  int    `validate:"gte=1,lte=50"`
	Offset int    `validate:"gte=0"`
}

// bind parses the JSON body into req and runs struct validation.
// An empty body leaves req at its zero value.
func bind(c *fiber.Ctx, req interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return errors.New("invalid request body")
		}
	}
	return check(req)
}

func check(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long (max %s)", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
}
