package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

type CourseHandler struct {
	service ports.CourseService
}

func NewCourseHandler(service ports.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List handles GET /api/courses.
//
// @Summary      List courses of the caller's center
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  courseResponse
// @Router       /courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	courses, err := h.service.ListCourses(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCourseResponses(courses))
}

// Create handles POST /api/courses.
//
// @Summary      Create a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCourseRequest  true  "Course"
// @Success      201   {object}  courseResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createCourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	course, err := h.service.CreateCourse(c.Request().Context(), actor, ports.CreateCourseInput{
		Name:      req.Name,
		TeacherID: req.TeacherID,
		Schedule:  req.Schedule,
		Price:     req.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCourseResponse(course))
}

// Update handles PUT /api/courses/:id.
//
// @Summary      Update a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Course ID"
// @Param        body  body      updateCourseRequest  true  "Fields to change"
// @Success      200   {object}  courseResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /courses/{id} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateCourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	course, err := h.service.UpdateCourse(c.Request().Context(), actor, c.Param("id"), ports.UpdateCourseInput{
		Name:      req.Name,
		TeacherID: req.TeacherID,
		Schedule:  req.Schedule,
		Price:     req.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCourseResponse(course))
}

// Delete handles DELETE /api/courses/:id.
//
// @Summary      Delete a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteCourse(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "course deleted"})
}

// AddLesson handles POST /api/courses/:id/lessons.
//
// @Summary      Append a lesson
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Course ID"
// @Param        body  body      lessonRequest  true  "Lesson"
// @Success      201   {object}  courseResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /courses/{id}/lessons [post]
func (h *CourseHandler) AddLesson(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req lessonRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	course, err := h.service.AddLesson(c.Request().Context(), actor, c.Param("id"), ports.LessonInput{
		Date:  req.Date,
		Topic: req.Topic,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCourseResponse(course))
}
