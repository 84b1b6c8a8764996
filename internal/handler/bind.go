package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"math"
	"reflect"
	"strings"

	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/errors"
	"HelpBeacon/pkg/geo"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

func init() {
	// 校验错误里使用 JSON 字段名而不是 Go 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON 解析请求体，所有失败都转成 Validation 错误
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return errors.Validation("%s is required", fe.Field())
		}
		return errors.Validation("%s is invalid", fe.Field())
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return errors.Validation("%s must be a %s", typeErr.Field, kindName(typeErr.Type.Kind()))
	}
	if stderrors.Is(err, io.EOF) {
		return errors.Validation("request body is required")
	}
	return errors.Validation("invalid JSON body")
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.String:
		return "string"
	default:
		return k.String()
	}
}

// parseNearby 解析 lat/lng/radiusKm 查询参数。radiusKm 缺失或无法解析时使用默认值，
// 任何有限值（包括 0 和负数）原样使用。
func parseNearby(c *gin.Context, excludeParam string) (models.NearbyQuery, error) {
	center, ok := parsePoint(c)
	if !ok {
		return models.NearbyQuery{}, errors.Validation("lat and lng must be numbers")
	}
	q := models.NearbyQuery{
		Center:   center,
		RadiusKm: parseRadius(c.Query("radiusKm")),
	}
	if excludeParam != "" {
		q.ExcludeID = c.Query(excludeParam)
	}
	return q, nil
}

func parsePoint(c *gin.Context) (geo.Point, bool) {
	lat, ok := parseFinite(c.Query("lat"))
	if !ok {
		return geo.Point{}, false
	}
	lng, ok := parseFinite(c.Query("lng"))
	if !ok {
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lng: lng}, true
}

func parseRadius(raw string) float64 {
	if r, ok := parseFinite(raw); ok {
		return r
	}
	return geo.DefaultRadiusKm
}

func parseFinite(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
