package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Painel Admin API",
        "description": "Dashboard aggregation and grades ledger for the platform admin panel",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Dashboard", "description": "Platform overview aggregated from the platform API"},
        {"name": "Notas", "description": "Grades ledger with manual entries and audit history"},
        {"name": "Metrics", "description": "Runtime counters"}
    ],
    "paths": {
        "/dashboard/plataforma": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Platform dashboard overview",
                "parameters": [{"name": "refresh", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/plataforma/pedagogico": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Pedagogical dashboard overview",
                "description": "Business sections are always zeroed. A 403 from the platform API yields an all-zero overview.",
                "parameters": [{"name": "refresh", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "502": {"description": "Platform API failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notas/cursos/{cursoId}/turmas/{turmaId}": {
            "get": {
                "tags": ["Notas"],
                "summary": "Grade grid of a class",
                "parameters": [
                    {"name": "cursoId", "in": "path", "required": true, "type": "string"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "string"},
                    {"name": "alunoIds", "in": "query", "required": true, "type": "string", "description": "Comma separated student IDs"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notas/cursos/{cursoId}/turmas/{turmaId}/export": {
            "get": {
                "tags": ["Notas"],
                "summary": "Download the grade grid of a class",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "cursoId", "in": "path", "required": true, "type": "string"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "string"},
                    {"name": "alunoIds", "in": "query", "required": true, "type": "string", "description": "Comma separated student IDs"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notas/cursos/{cursoId}/turmas/{turmaId}/seed": {
            "post": {
                "tags": ["Notas"],
                "summary": "Seed demo grades for a class once",
                "parameters": [
                    {"name": "cursoId", "in": "path", "required": true, "type": "string"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/SeedTurmaRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Feature disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId}": {
            "get": {
                "tags": ["Notas"],
                "summary": "Computed grade of one enrollment",
                "parameters": [
                    {"name": "cursoId", "in": "path", "required": true, "type": "string"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "string"},
                    {"name": "alunoId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Notas"],
                "summary": "Append a manual grade entry",
                "parameters": [
                    {"name": "cursoId", "in": "path", "required": true, "type": "string"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "string"},
                    {"name": "alunoId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertNotaRequest"}}
                ],
                "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "422": {"description": "Grade limit exceeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId}/manual": {
            "delete": {
                "tags": ["Notas"],
                "summary": "Remove the newest manual grade entry",
                "parameters": [
                    {"name": "cursoId", "in": "path", "required": true, "type": "string"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "string"},
                    {"name": "alunoId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId}/historico": {
            "get": {
                "tags": ["Notas"],
                "summary": "Manual grade audit trail, newest first",
                "parameters": [
                    {"name": "cursoId", "in": "path", "required": true, "type": "string"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "string"},
                    {"name": "alunoId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notas/cursos/{cursoId}/turmas/{turmaId}/alunos/{alunoId}/lancamentos": {
            "get": {
                "tags": ["Notas"],
                "summary": "Manual grade entries, newest first",
                "parameters": [
                    {"name": "cursoId", "in": "path", "required": true, "type": "string"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "string"},
                    {"name": "alunoId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/metrics/snapshot": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Runtime counters of this instance",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "OrigemRef": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["PROVA", "ATIVIDADE", "AULA", "OUTRO"]},
                "id": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "UpsertNotaRequest": {
            "type": "object",
            "properties": {
                "grade": {"type": "number", "maximum": 10, "x-nullable": true},
                "reason": {"type": "string", "maxLength": 500},
                "origin": {"$ref": "#/definitions/OrigemRef"}
            }
        },
        "SeedTurmaRequest": {
            "type": "object",
            "properties": {
                "studentIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
