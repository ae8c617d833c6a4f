package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
)

var configPage = template.Must(template.New("configure").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Configure GoStremioMux</title>
  <link href="https://fonts.googleapis.com/css2?family=Roboto:wght@400;500;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --primary-color: #4a90e2;
      --secondary-color: #50e3c2;
      --background-color: #f7f9fc;
      --text-color: #333;
      --input-border: #ccc;
      --input-focus: var(--primary-color);
    }
    * { box-sizing: border-box; }
    body {
      font-family: 'Roboto', sans-serif;
      background-color: var(--background-color);
      color: var(--text-color);
      margin: 0;
      padding: 20px;
      display: flex;
      align-items: center;
      justify-content: center;
      min-height: 100vh;
    }
    .container {
      background-color: #fff;
      border-radius: 8px;
      padding: 30px;
      max-width: 500px;
      width: 100%;
      box-shadow: 0 4px 12px rgba(0, 0, 0, 0.1);
    }
    h1 {
      text-align: center;
      margin-bottom: 20px;
      color: var(--primary-color);
    }
    label { font-weight: 500; margin-top: 15px; display: block; }
    input, textarea {
      width: 100%;
      padding: 10px;
      border: 1px solid var(--input-border);
      border-radius: 4px;
      margin-top: 5px;
      font-size: 1rem;
    }
    input:focus, textarea:focus {
      outline: none;
      border-color: var(--input-focus);
      box-shadow: 0 0 5px rgba(74, 144, 226, 0.5);
    }
    button {
      background-color: var(--primary-color);
      color: #fff;
      border: none;
      padding: 12px 20px;
      border-radius: 4px;
      font-size: 1rem;
      cursor: pointer;
      margin-top: 25px;
      width: 100%;
      transition: background-color 0.3s ease;
    }
    button:hover { background-color: var(--secondary-color); }
    .result {
      margin-top: 25px;
      background-color: #f1f3f5;
      border: 1px solid #e0e6ed;
      border-radius: 4px;
      padding: 15px;
      word-break: break-all;
    }
    .result a {
      color: var(--primary-color);
      text-decoration: none;
      font-weight: 500;
    }
    textarea { font-family: monospace; min-height: 260px; }
    .presets { font-size: 0.9rem; color: #666; margin-top: 5px; }
    .result a:hover { text-decoration: underline; }
  </style>
  <script>
    function b64(s) {
      return btoa(unescape(encodeURIComponent(s))).replace(/\+/g, '-').replace(/\//g, '_').replace(/=+$/, '');
    }

    function unb64(s) {
      s = s.replace(/-/g, '+').replace(/_/g, '/');
      return decodeURIComponent(escape(atob(s)));
    }

    function getConfigFromURL() {
      const pathParts = window.location.pathname.split('/').filter(p => p);
      if (pathParts.length >= 2 && pathParts[pathParts.length - 1] === "configure") {
        try {
          const decoded = JSON.parse(unb64(pathParts[pathParts.length - 2]));
          document.getElementById('config').value = JSON.stringify(decoded, null, 2);
        } catch (error) {
          console.error("Error decoding configuration:", error);
        }
      }
    }

    function generateConfig() {
      let config;
      try {
        config = JSON.parse(document.getElementById('config').value);
      } catch (error) {
        document.getElementById('result').textContent = 'Invalid JSON: ' + error.message;
        return;
      }
      const encodedConfig = b64(JSON.stringify(config));
      const manifest = window.location.origin + '/' + encodedConfig + '/manifest.json';

      document.getElementById('result').innerHTML =
        '<p><strong>Manifest:</strong></p>' +
        '<p><a href="' + manifest + '" target="_blank">' + manifest + '</a></p>' +
        '<p><a href="' + manifest.replace(/^https?:/, 'stremio:') + '">Install in Stremio</a></p>';
    }

    window.onload = getConfigFromURL;
  </script>
</head>
<body>
  <div class="container">
    <h1>Configure GoStremioMux</h1>
    <label for="config">Configuration (JSON)</label>
    <textarea id="config">{{.Example}}</textarea>
    <p class="presets">Available presets: {{range $i, $p := .Presets}}{{if $i}}, {{end}}<code>{{$p}}</code>{{end}}</p>

    <button onclick="generateConfig()">Generate</button>
    <div id="result" class="result"></div>
  </div>
</body>
</html>`))

// exampleConfig is shown on a blank configuration page.
var exampleConfig = config.UserConfig{
	Adapters: []config.AdapterConfig{
		{ID: "torrentio", Preset: constants.PresetTorrentio},
		{ID: "tpb", Preset: constants.PresetApibay},
	},
	Store:      &config.StoreConfig{Provider: constants.StoreAllDebrid, Token: "YOUR_TOKEN"},
	Filters:    config.FilterRules{ExcludedQualities: []string{"CAM", "TeleSync"}},
	MaxResults: 30,
}

// handleConfig serves the configuration page. A configuration already in the
// path is loaded back into the editor by the page script.
func (h *Handler) handleConfig(c *gin.Context) {
	example, err := json.MarshalIndent(exampleConfig, "", "  ")
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err = configPage.Execute(&buf, struct {
		Example string
		Presets []string
	}{
		Example: string(example),
		Presets: h.registry.Presets(),
	})
	if err != nil {
		h.logger.Errorf("[ConfigHandler] failed to render page: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
