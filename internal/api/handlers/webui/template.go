package webui

import (
	"html/template"

	"github.com/router-for-me/ProxyConfigUI/internal/config"
	"github.com/router-for-me/ProxyConfigUI/internal/session"
)

type indexData struct {
	Providers    []config.Provider
	Env          map[string]string
	CSRFToken    string
	Flashes      []session.Flash
	LoggedIn     bool
	APIKeyHeader string
	Port         string
}

// The page is intentionally minimal markup; presentation is not this
// tool's concern. Provider rows use the index-suffixed field names the
// form parser expects.
var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"join": joinModels,
}).Parse(`<!DOCTYPE html>
<html>
<head><title>Proxy Configuration</title></head>
<body>
<h1>Proxy Configuration</h1>
{{range .Flashes}}<p class="flash {{.Category}}">{{.Message}}</p>{{end}}
{{if not .LoggedIn}}
<form method="post" action="/login">
  <input type="password" name="api_key" placeholder="API key">
  <button type="submit">Log in</button>
</form>
{{end}}
<form method="post" action="/save_config">
  <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
  {{range $i, $p := .Providers}}
  <fieldset>
    <input name="provider_name_{{$i}}" value="{{$p.Name}}">
    <input name="type_{{$i}}" value="{{$p.Type}}">
    <input name="api_key_env_{{$i}}" value="{{$p.APIKeyEnv}}">
    <input type="password" name="api_key_value_{{$i}}" value="">
    <input name="base_url_{{$i}}" value="{{$p.BaseURL}}">
    <input name="models_{{$i}}" value="{{join $p.Models}}">
    <input name="priority_{{$i}}" value="{{$p.Priority}}">
    <input type="checkbox" name="enabled_{{$i}}"{{if $p.Enabled}} checked{{end}}>
    <input type="radio" name="forced_provider" value="{{$p.Name}}"{{if $p.Forced}} checked{{end}}>
  </fieldset>
  {{end}}
  <input name="server_port" value="{{.Port}}">
  <input name="api_key_header" value="{{.APIKeyHeader}}">
  <button type="submit">Save</button>
</form>
</body>
</html>
`))

func joinModels(models []string) string {
	out := ""
	for i, m := range models {
		if i > 0 {
			out += ", "
		}
		out += m
	}
	return out
}
