package view

import (
	"github.com/cristianadrielbraun/qrform/internal/controller"
	"github.com/cristianadrielbraun/qrform/internal/form"
)

// Tee forwards every call to each view in order.
type Tee []controller.View

func (t Tee) SetVersionOptions(versions []int) {
	for _, v := range t {
		v.SetVersionOptions(versions)
	}
}

func (t Tee) SetColorLabels(labels form.ColorLabels) {
	for _, v := range t {
		v.SetColorLabels(labels)
	}
}

func (t Tee) SetGenerating(busy bool) {
	for _, v := range t {
		v.SetGenerating(busy)
	}
}

func (t Tee) ClearError() {
	for _, v := range t {
		v.ClearError()
	}
}

func (t Tee) ShowError(msg string) {
	for _, v := range t {
		v.ShowError(msg)
	}
}

func (t Tee) ShowImage(src string) {
	for _, v := range t {
		v.ShowImage(src)
	}
}

func (t Tee) SetDownload(url string) {
	for _, v := range t {
		v.SetDownload(url)
	}
}

func (t Tee) Navigate(url string) {
	for _, v := range t {
		v.Navigate(url)
	}
}
