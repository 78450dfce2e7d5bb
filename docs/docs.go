// Package docs holds the Swagger document served at /swagger/*any.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "StayLink Concierge",
    "description": "Sales concierge for vacation rentals: intent detection, availability grounding and reply generation",
    "version": "1.0"
  },
  "basePath": "/",
  "securityDefinitions": {
    "ApiKey": {"type": "apiKey", "in": "header", "name": "X-API-Key"}
  },
  "paths": {
    "/healthz": {
      "get": {
        "tags": ["health"],
        "summary": "Health check",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "OK"},
          "503": {"description": "Inventory unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/api/intention-detect": {
      "post": {
        "tags": ["concierge"],
        "summary": "Classify a guest message",
        "security": [{"ApiKey": []}],
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/IntentionRequest"}}],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/IntentionResponse"}},
          "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/api/availability": {
      "post": {
        "tags": ["concierge"],
        "summary": "Search available properties",
        "security": [{"ApiKey": []}],
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/AvailabilityRequest"}}],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/AvailabilityResponse"}},
          "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "503": {"description": "Inventory unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/api/query": {
      "post": {
        "tags": ["concierge"],
        "summary": "Run one concierge turn",
        "security": [{"ApiKey": []}],
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/QueryRequest"}}],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/QueryResponse"}},
          "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    }
  },
  "definitions": {
    "ErrorResponse": {
      "type": "object",
      "properties": {
        "error": {
          "type": "object",
          "properties": {
            "code": {"type": "string"},
            "message": {"type": "string"},
            "details": {}
          }
        }
      }
    },
    "IntentionRequest": {
      "type": "object",
      "properties": {"message": {"type": "string"}, "mensaje": {"type": "string"}}
    },
    "IntentionResponse": {
      "type": "object",
      "properties": {
        "intent": {"type": "string"},
        "party_size": {"type": "integer"},
        "date_range": {"$ref": "#/definitions/DateRange"},
        "is_weekend": {"type": "boolean"},
        "location_phrase": {"type": "string"}
      }
    },
    "DateRange": {
      "type": "object",
      "properties": {"check_in": {"type": "string", "format": "date"}, "check_out": {"type": "string", "format": "date"}}
    },
    "AvailabilityRequest": {
      "type": "object",
      "required": ["empresaId"],
      "properties": {
        "personas": {"type": "integer"},
        "fecha_entrada": {"type": "string", "format": "date"},
        "fecha_salida": {"type": "string", "format": "date"},
        "ubicacion": {"type": "string"},
        "empresaId": {"type": "string"}
      }
    },
    "AvailabilityResponse": {
      "type": "object",
      "properties": {
        "empresa": {"type": "string"},
        "opciones": {"type": "array", "items": {"$ref": "#/definitions/PropertyOffer"}}
      }
    },
    "PropertyOffer": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "nightly_price": {"type": "number"},
        "capacity": {"type": "integer"},
        "preview_images": {
          "type": "array",
          "items": {"type": "object", "properties": {"kind": {"type": "string"}, "url": {"type": "string"}}}
        },
        "booking_url": {"type": "string"}
      }
    },
    "QueryRequest": {
      "type": "object",
      "required": ["empresaId"],
      "properties": {
        "message": {"type": "string"},
        "mensaje": {"type": "string"},
        "empresaId": {"type": "string"},
        "history": {
          "type": "array",
          "items": {"type": "object", "properties": {"role": {"type": "string"}, "content": {"type": "string"}}}
        }
      }
    },
    "QueryResponse": {
      "type": "object",
      "properties": {
        "intent": {"type": "string"},
        "model_used": {"type": "string", "enum": ["cheap", "powerful"]},
        "response": {"type": "string"},
        "data": {
          "type": "object",
          "properties": {
            "tenant_id": {"type": "string"},
            "offers": {"type": "array", "items": {"$ref": "#/definitions/PropertyOffer"}}
          }
        },
        "turn_id": {"type": "string"},
        "model_name": {"type": "string"},
        "grounding_error": {"type": "string"},
        "simulated": {"type": "boolean"},
        "latency_ms": {"type": "integer"}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
