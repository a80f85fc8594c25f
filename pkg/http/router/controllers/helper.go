package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

type envelope map[string]interface{}

const maxBodyBytes = 1 << 20

type baseAPI struct {
	log      *zap.Logger
	validate *validator.Validate
	trans    ut.Translator
}

func newBaseAPI(log *zap.Logger) baseAPI {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return baseAPI{log: log, validate: validate, trans: trans}
}

func (api *baseAPI) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (api *baseAPI) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return fmt.Errorf("body contains badly-formed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// validateStruct runs the validator and translates its messages to english.
func (api *baseAPI) validateStruct(req interface{}) error {
	err := api.validate.Struct(req)
	if err == nil {
		return nil
	}
	vv := translateError(err, api.trans)
	vvString := []string{}
	for _, v := range vv {
		vvString = append(vvString, v.Error())
	}
	return fmt.Errorf("validation error: %v", vvString)
}

func translateError(err error, trans ut.Translator) []error {
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

func (api *baseAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	var res errorResponse
	res.Error.Code = code
	res.Error.Message = message
	if err := api.writeJSON(w, status, envelope{"error": res.Error}, nil); err != nil {
		api.log.Error("failed to write error response", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *baseAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
}

func (api *baseAPI) NotFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
}

func (api *baseAPI) UnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
}

func (api *baseAPI) TimeoutResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
}

func (api *baseAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("internal server error", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	api.errorResponse(w, r, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", util.MessageInternalServerError)
}

// getStatusCode writes the error response matching the error code of err.
func (api *baseAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, util.ErrBadParamInput), errors.Is(err, util.ErrInvalidWeight):
		api.BadRequestResponse(w, r, err)
	case errors.Is(err, util.ErrNotFound), errors.Is(err, util.ErrEdgeNotFound):
		api.NotFoundResponse(w, r, err)
	case errors.Is(err, util.ErrNetworkLoad), errors.Is(err, util.ErrGeocodeFailure), errors.Is(err, util.ErrEmptyGraph):
		api.UnavailableResponse(w, r, err)
	case errors.Is(err, util.ErrTimeout):
		api.TimeoutResponse(w, r, err)
	default:
		api.ServerErrorResponse(w, r, err)
	}
}
