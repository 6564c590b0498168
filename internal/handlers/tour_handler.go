package handlers

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"tourbook/internal/services"
	"tourbook/internal/utils"
	"tourbook/internal/validators"
)

const maxTourImages = 3

type TourHandler struct {
	tourService services.TourService
}

func NewTourHandler(tourService services.TourService) *TourHandler {
	return &TourHandler{
		tourService: tourService,
	}
}

// AliasTopTours presets the query for the five best rated cheap tours.
func (h *TourHandler) AliasTopTours(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("limit", "5")
	q.Set("sort", "-ratingsAverage,price")
	q.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	c.Request.URL.RawQuery = q.Encode()
	c.Next()
}

func (h *TourHandler) ListTours(c *gin.Context) {
	tours, err := h.tourService.ListTours(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	selected, ok := selectFields(c, tours)
	if !ok {
		return
	}
	utils.ListResponse(c, "tours", selected, len(tours))
}

// GetTour accepts an id or a slug.
func (h *TourHandler) GetTour(c *gin.Context) {
	tour, err := h.tourService.GetTour(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"tour": tour})
}

func (h *TourHandler) CreateTour(c *gin.Context) {
	var request validators.CreateTourRequest
	if !bindJSON(c, &request) {
		return
	}

	tour, err := h.tourService.CreateTour(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"tour": tour})
}

func (h *TourHandler) UpdateTour(c *gin.Context) {
	var request validators.UpdateTourRequest
	if !bindJSON(c, &request) {
		return
	}

	tour, err := h.tourService.UpdateTour(c.Request.Context(), c.Param("id"), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"tour": tour})
}

func (h *TourHandler) DeleteTour(c *gin.Context) {
	if err := h.tourService.DeleteTour(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// UpdateTourImages accepts multipart "imageCover" (one file) and "images"
// (up to three files).
func (h *TourHandler) UpdateTourImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Please upload the images as multipart/form-data."))
		return
	}

	var files []multipart.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	open := func(fh *multipart.FileHeader) (io.Reader, error) {
		f, err := openImage(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		return f, nil
	}

	var cover io.Reader
	if fhs := form.File["imageCover"]; len(fhs) > 0 {
		if cover, err = open(fhs[0]); err != nil {
			utils.HandleError(c, err)
			return
		}
	}

	fhs := form.File["images"]
	if len(fhs) > maxTourImages {
		utils.HandleError(c, utils.NewBadRequestError("Please upload at most 3 tour images."))
		return
	}
	images := make([]io.Reader, 0, len(fhs))
	for _, fh := range fhs {
		img, err := open(fh)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		images = append(images, img)
	}

	tour, err := h.tourService.UpdateTourImages(c.Request.Context(), c.Param("id"), cover, images)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"tour": tour})
}

func (h *TourHandler) GetTourStats(c *gin.Context) {
	stats, err := h.tourService.GetTourStats(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"stats": stats})
}

func (h *TourHandler) GetMonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid year: "+c.Param("year")))
		return
	}

	plan, err := h.tourService.GetMonthlyPlan(c.Request.Context(), year)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.ListResponse(c, "plan", plan, len(plan))
}

// GetToursWithin serves /tours-within/:distance/center/:latlng/unit/:unit.
func (h *TourHandler) GetToursWithin(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid distance: "+c.Param("distance")))
		return
	}

	tours, err := h.tourService.GetToursWithin(c.Request.Context(), distance, c.Param("latlng"), c.Param("unit"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.ListResponse(c, "data", tours, len(tours))
}

// GetDistances serves /distances/:latlng/unit/:unit.
func (h *TourHandler) GetDistances(c *gin.Context) {
	distances, err := h.tourService.GetDistances(c.Request.Context(), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"data": distances})
}
