// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// Package docs registers the OpenAPI document served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/server/docs.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "GitHub Repository",
            "url": "https://github.com/tomtom215/comicrec"
        },
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "description": "Creates an account and returns an access token.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a user",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Validates credentials and returns an access token. Repeated failures lock the email temporarily.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/comics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Comics"],
                "summary": "List comics",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Items to skip", "name": "skip", "in": "query"},
                    {"type": "integer", "default": 100, "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Comics"],
                "summary": "Create a comic",
                "parameters": [
                    {"description": "Comic", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateComicRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/comics/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Comics"],
                "summary": "Get a comic",
                "parameters": [
                    {"type": "integer", "description": "Comic ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/images/refresh-images": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Recomputes image_url for the whole catalog from title, character and genre matching.",
                "produces": ["application/json"],
                "tags": ["Images"],
                "summary": "Refresh cover images",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/images/image-suggestions/{comic_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Images"],
                "summary": "Cover image suggestions",
                "parameters": [
                    {"type": "integer", "description": "Comic ID", "name": "comic_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/ratings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Ratings"],
                "summary": "List my ratings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Upserts the caller's rating (1.0-5.0). Returns 202 when the write is queued for retry.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Ratings"],
                "summary": "Rate a comic",
                "parameters": [
                    {"description": "Rating", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RateComicRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/ratings/{comic_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Ratings"],
                "summary": "Get my rating for a comic",
                "parameters": [
                    {"type": "integer", "description": "Comic ID", "name": "comic_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/recommendations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Content-based recommendations from the caller's liked comics (rating >= 3), or the most popular comics when there are none.",
                "produces": ["application/json"],
                "tags": ["Recommendations"],
                "summary": "Get recommendations",
                "parameters": [
                    {"type": "integer", "default": 5, "description": "Maximum number of recommendations; 0 returns none. Capped at RECOMMEND_MAX_K (default 100), reported back as limit and limit_clamped", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "description": "Counts of comics, ratings and users plus the top genres. Cached until the catalog changes.",
                "produces": ["application/json"],
                "tags": ["Stats"],
                "summary": "Catalog statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/stats/sample": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Stats"],
                "summary": "Catalog sample",
                "parameters": [
                    {"type": "integer", "default": 10, "description": "Sample size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns database connectivity, WAL state, version and uptime",
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Get system health status",
                "responses": {
                    "200": {"description": "Health status retrieved successfully", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Kubernetes liveness probe",
                "responses": {
                    "200": {"description": "Service is alive", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Kubernetes readiness probe",
                "responses": {
                    "200": {"description": "Service is ready", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "503": {"description": "Service is not ready", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "api.APIMeta": {
            "type": "object",
            "properties": {
                "duration_ms": {"type": "integer"},
                "pagination": {"$ref": "#/definitions/api.PaginationMeta"},
                "request_id": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "api.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/api.APIError"},
                "meta": {"$ref": "#/definitions/api.APIMeta"},
                "success": {"type": "boolean"}
            }
        },
        "api.PaginationMeta": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "has_more": {"type": "boolean"},
                "limit": {"type": "integer"},
                "skip": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "models.CreateComicRequest": {
            "type": "object",
            "required": ["description", "genre", "title"],
            "properties": {
                "characters": {"type": "array", "maxItems": 100, "items": {"type": "string"}},
                "description": {"type": "string", "maxLength": 5000},
                "external_id": {"type": "string", "maxLength": 200},
                "genre": {"type": "string", "maxLength": 100},
                "image_url": {"type": "string", "maxLength": 2048},
                "title": {"type": "string", "maxLength": 300}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.RateComicRequest": {
            "type": "object",
            "required": ["comic_id"],
            "properties": {
                "comic_id": {"type": "integer"},
                "rating": {"type": "number", "maximum": 5, "minimum": 1}
            }
        },
        "models.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "maxLength": 254},
                "password": {"type": "string", "maxLength": 72, "minLength": 8}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token from /auth/login, sent as \"Authorization: Bearer <token>\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Comicrec API",
	Description:      "Content-based comic recommendations with a popularity fallback for new users.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
