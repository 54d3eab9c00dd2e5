// RetroDex Core
// Copyright (c) 2026 The RetroDex Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RetroDex Core.
//
// RetroDex Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RetroDex Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RetroDex Core.  If not, see <http://www.gnu.org/licenses/>.

package gamelist

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// The wire format is the EmulationStation gamelist.xml contract: a
// <gameList> root with repeated <game> items. Element and attribute names
// are fixed; other tools in the ecosystem read and write the same file.

type xmlDocument struct {
	XMLName xml.Name  `xml:"gameList"`
	Games   []xmlGame `xml:"game"`
}

type xmlGame struct {
	ID          string `xml:"id,attr,omitempty"`
	Source      string `xml:"source,attr,omitempty"`
	Path        string `xml:"path"`
	Name        string `xml:"name,omitempty"`
	Description string `xml:"desc,omitempty"`
	Genre       string `xml:"genre,omitempty"`
	Players     string `xml:"players,omitempty"`
	Developer   string `xml:"developer,omitempty"`
	Publisher   string `xml:"publisher,omitempty"`
	Rating      string `xml:"rating,omitempty"`
	ReleaseDate string `xml:"releasedate,omitempty"`
	Favorite    string `xml:"favorite,omitempty"`
	Image       string `xml:"image,omitempty"`
	Back        string `xml:"back,omitempty"`
	Side        string `xml:"side,omitempty"`
	Texture     string `xml:"texture,omitempty"`
	Video       string `xml:"video,omitempty"`
	Marquee     string `xml:"marquee,omitempty"`
	FanArt      string `xml:"fanart,omitempty"`
	Screenshot  string `xml:"screenshot,omitempty"`
	Title       string `xml:"title,omitempty"`
	Wheel       string `xml:"wheel,omitempty"`
	Manual      string `xml:"manual,omitempty"`
	Map         string `xml:"map,omitempty"`
	GenreID     string `xml:"genreid,omitempty"`
}

func (g *xmlGame) mediaField(t MediaType) *string {
	switch t {
	case MediaBoxFront:
		return &g.Image
	case MediaBoxBack:
		return &g.Back
	case MediaBoxSide:
		return &g.Side
	case MediaBoxTexture:
		return &g.Texture
	case MediaVideo:
		return &g.Video
	case MediaMarquee:
		return &g.Marquee
	case MediaFanArt:
		return &g.FanArt
	case MediaScreenshot:
		return &g.Screenshot
	case MediaTitleShot:
		return &g.Title
	case MediaWheel:
		return &g.Wheel
	case MediaManual:
		return &g.Manual
	case MediaMap:
		return &g.Map
	default:
		return nil
	}
}

func (g *xmlGame) toEntry() *Entry {
	e := &Entry{
		Path:        g.Path,
		Name:        g.Name,
		Description: g.Description,
		Genre:       g.Genre,
		Players:     g.Players,
		Developer:   g.Developer,
		Publisher:   g.Publisher,
		ReleaseDate: g.ReleaseDate,
		Source:      g.Source,
	}
	if g.ID != "" {
		if id, err := strconv.Atoi(g.ID); err == nil {
			e.ID = id
		}
	}
	if g.Rating != "" {
		if r, err := strconv.ParseFloat(g.Rating, 64); err == nil {
			e.Rating = r
		}
	}
	fav := strings.TrimSpace(g.Favorite)
	e.Favorite = strings.EqualFold(fav, "true") || fav == "1"
	for _, t := range AllMediaTypes {
		if v := *g.mediaField(t); v != "" {
			e.SetMediaPath(t, v)
		}
	}
	return e
}

// renderGame maps a domain entry onto the wire struct. Empty fields stay
// empty and are omitted when marshalled, which is the remove-if-empty rule
// of the merge-by-key save.
func renderGame(e *Entry) xmlGame {
	g := xmlGame{
		Path:        NormalizeRelPath(e.Path),
		Name:        strings.TrimSpace(e.Name),
		Description: e.Description,
		Genre:       e.Genre,
		Players:     e.Players,
		Developer:   e.Developer,
		Publisher:   e.Publisher,
		ReleaseDate: e.ReleaseDate,
		Source:      e.Source,
	}
	if e.ID != 0 {
		g.ID = strconv.Itoa(e.ID)
	}
	if e.Rating > 0 {
		// Two decimals, locale-invariant; strconv never localizes.
		g.Rating = strconv.FormatFloat(e.Rating, 'f', 2, 64)
	}
	if e.Favorite {
		g.Favorite = "true"
	}
	for _, t := range AllMediaTypes {
		if v := e.MediaPath(t); v != "" {
			*g.mediaField(t) = v
		}
	}
	return g
}

func decodeDocument(data []byte) (*xmlDocument, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse gamelist document: %w", err)
	}
	return &doc, nil
}

// encodeDocument serializes a document with the declaration and four-space
// indentation the rest of the ecosystem emits. Re-marshalling inherently
// drops whitespace-only text nodes from the source.
func encodeDocument(doc *xmlDocument) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode gamelist document: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	sb.Write(body)
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

func readDocument(fsys afero.Fs, path string) (*xmlDocument, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return decodeDocument(data)
}

// ParseCatalog loads a gamelist.xml into the domain model.
func ParseCatalog(fsys afero.Fs, path string) (*Catalog, error) {
	doc, err := readDocument(fsys, path)
	if err != nil {
		return nil, err
	}
	cat := &Catalog{Entries: make([]*Entry, 0, len(doc.Games))}
	for i := range doc.Games {
		cat.Entries = append(cat.Entries, doc.Games[i].toEntry())
	}
	return cat, nil
}
