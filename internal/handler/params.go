package handler

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"forecast-vintage-api/pkg/apierror"
)

const maxBodyBytes = 1 << 20

// bodyParams reads a JSON object or a form-encoded body into url.Values.
// JSON scalars are rendered in their textual form; nested values are
// rejected.
func bodyParams(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return url.Values{}, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if err := r.ParseForm(); err != nil {
			return nil, apierror.BadRequest("invalid request body", err.Error())
		}
		return r.PostForm, nil
	}

	var raw map[string]any
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, apierror.BadRequest("invalid request body", err.Error())
	}

	values := url.Values{}
	for key, value := range raw {
		text, ok, err := scalarText(value)
		if err != nil {
			return nil, apierror.BadRequest("invalid request body", key)
		}
		if ok {
			values.Set(key, text)
		}
	}
	return values, nil
}

func scalarText(value any) (string, bool, error) {
	switch v := value.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case bool:
		if v {
			return "true", true, nil
		}
		return "false", true, nil
	case json.Number:
		return v.String(), true, nil
	default:
		return "", false, fmt.Errorf("unsupported value %T", value)
	}
}

// param returns the trimmed value of key, or "" when absent.
func param(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
