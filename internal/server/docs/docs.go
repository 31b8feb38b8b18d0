// Package docs holds the OpenAPI description served at /swagger/.
// Regenerate with: swag init -g internal/server/server.go -o internal/server/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/audio/generate": {
            "post": {
                "description": "Synthesizes each line in order and concatenates the results into one MP3.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["audio"],
                "summary": "Generate podcast audio",
                "parameters": [
                    {
                        "description": "Script and optional voice overrides",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.audioRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pipeline.AudioResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.errorBody"}}
                }
            }
        },
        "/api/audio/preview": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["audio"],
                "summary": "Preview a voice",
                "parameters": [
                    {
                        "description": "Voice id and optional text",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.previewRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pipeline.PreviewResponse"}},
                    "400": {"description": "Invalid voice id", "schema": {"$ref": "#/definitions/server.errorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.errorBody"}}
                }
            }
        },
        "/api/content/paste": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Use pasted text",
                "parameters": [
                    {
                        "description": "Text and optional title",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.pasteRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ingest.Content"}}
                }
            }
        },
        "/api/content/search": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Research a topic",
                "parameters": [
                    {
                        "description": "Topic",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.searchRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ingest.Content"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.errorBody"}}
                }
            }
        },
        "/api/content/summarize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Summarize content",
                "parameters": [
                    {
                        "description": "Content",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.contentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.summaryResponse"}}
                }
            }
        },
        "/api/content/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Upload a text or PDF file",
                "parameters": [
                    {"type": "file", "description": "Source file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ingest.Content"}}
                }
            }
        },
        "/api/content/url": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Extract a web page",
                "parameters": [
                    {
                        "description": "Page URL",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.urlRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ingest.Content"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.errorBody"}}
                }
            }
        },
        "/api/content/wikipedia": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Fetch a Wikipedia article",
                "parameters": [
                    {
                        "description": "Title or URL",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.wikipediaRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ingest.Content"}},
                    "400": {"description": "Ambiguous title", "schema": {"$ref": "#/definitions/server.errorBody"}},
                    "404": {"description": "Article not found", "schema": {"$ref": "#/definitions/server.errorBody"}}
                }
            }
        },
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Service capabilities",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.healthResponse"}}
                }
            }
        },
        "/api/script/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["script"],
                "summary": "Draft a two-host script",
                "parameters": [
                    {
                        "description": "Source content",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.contentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.scriptResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.errorBody"}}
                }
            }
        },
        "/api/voices": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audio"],
                "summary": "List voices by language and gender",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.voicesResponse"}}
                }
            }
        }
    },
    "definitions": {
        "assembly.Segment": {
            "type": "object",
            "properties": {
                "audio_url": {"type": "string"},
                "filename": {"type": "string"},
                "gender": {"type": "string"},
                "name": {"type": "string"},
                "speaker": {"type": "string"},
                "text": {"type": "string"},
                "voice": {"type": "string"}
            }
        },
        "ingest.Content": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "source": {"type": "string"},
                "title": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "pipeline.AudioResponse": {
            "type": "object",
            "properties": {
                "audio_segments": {"type": "array", "items": {"$ref": "#/definitions/assembly.Segment"}},
                "combined_audio_url": {"type": "string"},
                "combined_duration_seconds": {"type": "number"},
                "combined_size_mb": {"type": "number"},
                "failed_lines": {"type": "integer"},
                "message": {"type": "string"},
                "mirror_url": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "pipeline.PreviewResponse": {
            "type": "object",
            "properties": {
                "audio_url": {"type": "string"},
                "text": {"type": "string"},
                "voice": {"type": "string"}
            }
        },
        "script.Line": {
            "type": "object",
            "properties": {
                "speaker": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "server.audioRequest": {
            "type": "object",
            "properties": {
                "first_host_voice": {"type": "string"},
                "p1_voice": {"type": "string"},
                "p2_voice": {"type": "string"},
                "script": {"type": "array", "items": {"$ref": "#/definitions/script.Line"}},
                "second_host_voice": {"type": "string"}
            }
        },
        "server.contentRequest": {
            "type": "object",
            "properties": {"content": {"type": "string"}}
        },
        "server.errorBody": {
            "type": "object",
            "properties": {"detail": {"type": "string"}}
        },
        "server.healthResponse": {
            "type": "object",
            "properties": {
                "features": {"type": "object"},
                "status": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "server.pasteRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "server.previewRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "voice_id": {"type": "string"}
            }
        },
        "server.scriptResponse": {
            "type": "object",
            "properties": {
                "script": {"type": "array", "items": {"$ref": "#/definitions/script.Line"}}
            }
        },
        "server.searchRequest": {
            "type": "object",
            "properties": {"query": {"type": "string"}}
        },
        "server.summaryResponse": {
            "type": "object",
            "properties": {"summary": {"type": "string"}}
        },
        "server.urlRequest": {
            "type": "object",
            "properties": {"url": {"type": "string"}}
        },
        "server.voicesResponse": {
            "type": "object",
            "properties": {
                "voices": {
                    "type": "object",
                    "additionalProperties": {"type": "object", "additionalProperties": {"type": "string"}}
                }
            }
        },
        "server.wikipediaRequest": {
            "type": "object",
            "properties": {"article_title": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "3.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Podcast Studio API",
	Description:      "Turns source content into a two-host podcast.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
