package http

import "net/http"

// openAPIDocument describes the public report API.
const openAPIDocument = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Shop Reports API",
    "description": "Monthly mechanic performance reports for the repair shop.",
    "version": "1.0.0"
  },
  "paths": {
    "/health_check": {
      "get": {
        "summary": "Dependency health",
        "responses": {
          "200": {"description": "All dependencies healthy"},
          "503": {"description": "One or more dependencies unavailable"}
        }
      }
    },
    "/api/reports/available-months": {
      "get": {
        "summary": "Months with finished orders",
        "responses": {
          "200": {
            "description": "List of available months",
            "content": {
              "application/json": {
                "schema": {
                  "type": "array",
                  "items": {"$ref": "#/components/schemas/AvailableMonth"}
                }
              }
            }
          }
        }
      }
    },
    "/api/reports/generate": {
      "post": {
        "summary": "Request report generation",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/ReportFilters"}
            }
          }
        },
        "responses": {
          "202": {"description": "Generation request accepted"},
          "400": {"description": "Invalid filters"},
          "500": {"description": "Publish failure"}
        }
      }
    },
    "/api/reports/monthly/{year}/{month}": {
      "get": {
        "summary": "Monthly report",
        "parameters": [
          {"name": "year", "in": "path", "required": true, "schema": {"type": "integer"}},
          {"name": "month", "in": "path", "required": true, "schema": {"type": "integer"}}
        ],
        "responses": {
          "200": {
            "description": "The stored report",
            "content": {
              "application/json": {
                "schema": {"$ref": "#/components/schemas/MonthlyReport"}
              }
            }
          },
          "400": {"description": "Invalid path parameters"},
          "404": {"description": "No report for the period"},
          "500": {"description": "Backend failure"}
        }
      }
    }
  },
  "components": {
    "schemas": {
      "ReportFilters": {
        "type": "object",
        "required": ["year", "month"],
        "properties": {
          "year": {"type": "integer", "minimum": 1980, "maximum": 2100},
          "month": {"type": "integer", "minimum": 1, "maximum": 12}
        }
      },
      "AvailableMonth": {
        "type": "object",
        "properties": {
          "year": {"type": "integer"},
          "month": {"type": "integer"}
        }
      },
      "MechanicPerformance": {
        "type": "object",
        "properties": {
          "totalOrders": {"type": "integer"},
          "averageHoursPerOrder": {"type": "number"},
          "servicesBreakdown": {
            "type": "object",
            "additionalProperties": {"type": "integer"}
          }
        }
      },
      "MonthlyReport": {
        "type": "object",
        "properties": {
          "year": {"type": "integer"},
          "month": {"type": "integer"},
          "mechanicPerformance": {
            "type": "object",
            "additionalProperties": {"$ref": "#/components/schemas/MechanicPerformance"}
          },
          "weeklyThroughput": {
            "type": "object",
            "additionalProperties": {"type": "integer"}
          }
        }
      }
    }
  }
}`

// OpenAPIHandler serves GET /openapi.json
func OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(openAPIDocument))
}
