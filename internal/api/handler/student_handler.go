package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

type StudentHandler struct {
	service ports.StudentService
}

func NewStudentHandler(service ports.StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// List handles GET /api/students. Teachers only receive their own students.
//
// @Summary      List students
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  studentResponse
// @Router       /students [get]
func (h *StudentHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	students, err := h.service.ListStudents(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentResponses(students))
}

// Create handles POST /api/students.
//
// @Summary      Enrol a student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createStudentRequest  true  "Student"
// @Success      201   {object}  studentResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /students [post]
func (h *StudentHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createStudentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	student, err := h.service.CreateStudent(c.Request().Context(), actor, ports.CreateStudentInput{
		Name:       req.Name,
		TeacherID:  req.TeacherID,
		CourseName: req.CourseName,
		Paid:       req.Paid,
		Attendance: toAttendance(req.Attendance),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStudentResponse(student))
}

// Update handles PUT /api/students/:id. A present attendance map replaces
// the stored one; use the bulk endpoint to merge.
//
// @Summary      Update a student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Student ID"
// @Param        body  body      updateStudentRequest  true  "Fields to change"
// @Success      200   {object}  studentResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /students/{id} [put]
func (h *StudentHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateStudentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	student, err := h.service.UpdateStudent(c.Request().Context(), actor, c.Param("id"), ports.UpdateStudentInput{
		Name:       req.Name,
		TeacherID:  req.TeacherID,
		CourseName: req.CourseName,
		Paid:       req.Paid,
		Attendance: toAttendance(req.Attendance),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentResponse(student))
}

// Delete handles DELETE /api/students/:id. Admin only.
//
// @Summary      Delete a student
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Student ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /students/{id} [delete]
func (h *StudentHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteStudent(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "student deleted"})
}

// BulkAttendance handles PUT /api/students/bulk.
//
// @Summary      Merge attendance for many students
// @Description  Each item's attendance map is merged date by date into the stored one. Items that cannot be applied are reported as skipped.
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkAttendanceRequest  true  "Attendance updates"
// @Success      200   {object}  bulkAttendanceResponse
// @Failure      400   {object}  map[string]string
// @Router       /students/bulk [put]
func (h *StudentHandler) BulkAttendance(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req bulkAttendanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.BulkUpdateAttendance(c.Request().Context(), actor, toAttendanceUpdates(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBulkAttendanceResponse(res))
}
