package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"staffhub.org/internal/staff"
)

func (a *API) handleEmployees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listEmployees(w, r)
	case http.MethodPost:
		a.createEmployee(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEmployeeScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/employees/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && parts[0] == "count":
		a.countEmployees(w, r)
	case len(parts) == 1 && parts[0] == "search":
		a.searchEmployees(w, r)
	case len(parts) == 2 && parts[0] == "department":
		a.listEmployeesByDepartment(w, r, parts[1])
	case len(parts) == 2 && parts[0] == "email":
		a.getEmployeeByEmail(w, r, parts[1])
	case len(parts) == 1:
		a.handleEmployeeByID(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleEmployeeByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		a.getEmployee(w, r, id)
	case http.MethodPut:
		a.updateEmployee(w, r, id)
	case http.MethodDelete:
		a.deleteEmployee(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) createEmployee(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, "employees.create") {
		return
	}
	var in staff.EmployeeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	emp, err := a.staff.Create(r.Context(), in)
	if err != nil {
		handleStaffError(w, r, err)
		return
	}
	a.recorder.RecordIfMutation(r.Context(), "employees.create", emp)
	w.Header().Set("Location", fmt.Sprintf("/v1/employees/%s", emp.ID))
	writeJSON(w, http.StatusCreated, emp)
}

func (a *API) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := a.staff.List(r.Context())
	if err != nil {
		handleStaffError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": employees})
}

func (a *API) getEmployee(w http.ResponseWriter, r *http.Request, id string) {
	emp, err := a.staff.Get(r.Context(), id)
	if err != nil {
		handleStaffError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (a *API) getEmployeeByEmail(w http.ResponseWriter, r *http.Request, email string) {
	emp, err := a.staff.GetByEmail(r.Context(), email)
	if err != nil {
		handleStaffError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (a *API) listEmployeesByDepartment(w http.ResponseWriter, r *http.Request, department string) {
	employees, err := a.staff.ListByDepartment(r.Context(), department)
	if err != nil {
		handleStaffError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": employees})
}

func (a *API) searchEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := a.staff.SearchByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handleStaffError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": employees})
}

func (a *API) countEmployees(w http.ResponseWriter, r *http.Request) {
	count, err := a.staff.Count(r.Context())
	if err != nil {
		handleStaffError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (a *API) updateEmployee(w http.ResponseWriter, r *http.Request, id string) {
	if !a.authorize(w, r, "employees.update") {
		return
	}
	var in staff.EmployeeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	emp, err := a.staff.Update(r.Context(), id, in)
	if err != nil {
		handleStaffError(w, r, err)
		return
	}
	a.recorder.RecordIfMutation(r.Context(), "employees.update", emp)
	writeJSON(w, http.StatusOK, emp)
}

func (a *API) deleteEmployee(w http.ResponseWriter, r *http.Request, id string) {
	if !a.authorize(w, r, "employees.delete") {
		return
	}
	if err := a.staff.Delete(r.Context(), id); err != nil {
		handleStaffError(w, r, err)
		return
	}
	a.recorder.RecordIfMutation(r.Context(), "employees.delete", staff.EmployeeID(id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}

func handleStaffError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, staff.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, staff.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, staff.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
